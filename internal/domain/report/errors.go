package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrLookupFailure = errors.New("team lookup failed")
)
