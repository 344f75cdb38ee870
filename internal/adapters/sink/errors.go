package sink

import "errors"

// Sentinel errors for report rendering.
var (
	ErrEncode        = errors.New("encode report failed")
	ErrUnknownFormat = errors.New("unknown output format")
	ErrOpenOutput    = errors.New("open output failed")
)
