package opendota

import crerr "github.com/cockroachdb/errors"

// Sentinel kinds for OpenDota errors.
var (
	ErrRequest      = crerr.New("opendota request failed")
	ErrDecode       = crerr.New("opendota payload malformed")
	ErrTeamNotFound = crerr.New("opendota team not found")
)
