package service

import crerr "github.com/cockroachdb/errors"

// Sentinel errors for a pipeline run. Check them with crerr.Is.
var (
	ErrFetchPlayers  = crerr.New("fetch pro players failed")
	ErrNotConfigured = crerr.New("service is missing a player source or team lookup")
)
