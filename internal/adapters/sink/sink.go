// Package sink renders team reports to an output stream.
package sink

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/okian/proteams/internal/domain/model"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatText = "text"
)

// Sink writes a finished report.
type Sink interface {
	Emit(ctx context.Context, reports []model.TeamReport) error
}

// New returns the sink for format writing to w.
func New(format string, w io.Writer) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatYAML:
		return &yamlSink{w: w}, nil
	case FormatText:
		return &textSink{w: w}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{FormatYAML, FormatText}
}
