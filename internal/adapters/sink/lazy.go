package sink

import (
	"fmt"
	"io"
	"os"
)

// StdoutPath selects standard output as the destination.
const StdoutPath = "-"

// LazyWriteCloser delays initialization until the writer is written to.
type LazyWriteCloser struct {
	init   func() (io.WriteCloser, error)
	writer io.WriteCloser
}

// NewLazyWriteCloser creates a LazyWriteCloser. init is called once, on the
// first Write.
func NewLazyWriteCloser(init func() (io.WriteCloser, error)) *LazyWriteCloser {
	return &LazyWriteCloser{init: init}
}

func (f *LazyWriteCloser) Write(p []byte) (int, error) {
	if f.writer == nil {
		w, err := f.init()
		if err != nil {
			return 0, err
		}
		f.writer = w
	}
	return f.writer.Write(p)
}

// Close closes the underlying writer if it was ever opened.
func (f *LazyWriteCloser) Close() error {
	if f.writer != nil {
		return f.writer.Close()
	}
	return nil
}

// Opened reports whether the first write has happened.
func (f *LazyWriteCloser) Opened() bool { return f.writer != nil }

// Open returns the destination for path. An empty path or "-" is stdout,
// which is never closed. Files are created and truncated on first write.
func Open(path string) io.WriteCloser {
	if path == "" || path == StdoutPath {
		return nopCloser{os.Stdout}
	}
	return NewLazyWriteCloser(func() (io.WriteCloser, error) {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpenOutput, err)
		}
		return f, nil
	})
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
