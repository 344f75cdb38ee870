// Package scoring computes a player's experience from account-history age.
package scoring

import (
	"fmt"
	"time"

	"github.com/okian/proteams/internal/domain/model"
)

// HistoryTimeLayout is the UTC layout of full_history_time, e.g.
// 2019-01-02T03:04:05.123456Z. Parsing also accepts a shorter or missing
// fractional part.
const HistoryTimeLayout = "2006-01-02T15:04:05.999999Z"

// Option applies a configuration option to the ExperienceScorer.
type Option func(*ExperienceScorer)

// WithLayout overrides the timestamp layout used to parse history times.
func WithLayout(layout string) Option {
	return func(s *ExperienceScorer) {
		if layout != "" {
			s.layout = layout
		}
	}
}

// Scorer computes an experience value for one player against a fixed instant.
type Scorer interface {
	// Score returns the elapsed seconds between the player's earliest recorded
	// history and ref, never negative. A data-quality problem yields 0 and an
	// error wrapping ErrDataQuality.
	Score(player model.PlayerRecord, ref time.Time) (float64, error)
}

// ExperienceScorer implements Scorer from full_history_time.
type ExperienceScorer struct {
	layout string
}

// NewExperienceScorer creates a scorer with configuration options.
func NewExperienceScorer(opts ...Option) *ExperienceScorer {
	s := &ExperienceScorer{layout: HistoryTimeLayout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the experience for the given player.
func (s *ExperienceScorer) Score(player model.PlayerRecord, ref time.Time) (float64, error) {
	raw, ok := player.HistoryTime()
	if !ok {
		return 0, ErrMissingHistoryTime
	}

	since, err := time.Parse(s.layout, raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedHistoryTime, raw, err)
	}

	// Clock skew or bad data can put the history after ref.
	elapsed := ref.Sub(since).Seconds()
	if elapsed < 0 {
		return 0, nil
	}
	return elapsed, nil
}
