package scoring

import (
	"errors"
	"fmt"
)

// Sentinel kinds for scoring errors. Both history errors wrap ErrDataQuality.
var (
	ErrDataQuality          = errors.New("player data quality")
	ErrMissingHistoryTime   = fmt.Errorf("%w: full_history_time missing", ErrDataQuality)
	ErrMalformedHistoryTime = fmt.Errorf("%w: full_history_time malformed", ErrDataQuality)
)
