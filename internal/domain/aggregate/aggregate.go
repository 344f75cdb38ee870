// Package aggregate folds per-player experience into per-team totals.
package aggregate

import (
	"time"

	"github.com/okian/proteams/internal/domain/model"
	"github.com/okian/proteams/internal/domain/scoring"
)

// TeamScores maps a team id to its accumulated experience.
type TeamScores map[int64]float64

// Accumulate adds xp to the running total of the player's team and returns the
// map, allocating it when nil. The sentinel team is accumulated like any other;
// ranking drops it.
func Accumulate(scores TeamScores, player model.PlayerRecord, xp float64) TeamScores {
	if scores == nil {
		scores = make(TeamScores)
	}
	scores[player.TeamID] += xp
	return scores
}

// WarnFunc receives a player whose score could not be derived.
type WarnFunc func(player model.PlayerRecord, err error)

// Fold scores every player once against ref and returns fresh per-team totals.
// A scoring error counts the player as zero and is passed to onWarn.
func Fold(players []model.PlayerRecord, ref time.Time, scorer scoring.Scorer, onWarn WarnFunc) TeamScores {
	scores := make(TeamScores)
	for _, p := range players {
		xp, err := scorer.Score(p, ref)
		if err != nil && onWarn != nil {
			onWarn(p, err)
		}
		scores = Accumulate(scores, p, xp)
	}
	return scores
}

// Without returns a copy of scores minus the given team id.
func (s TeamScores) Without(teamID int64) TeamScores {
	out := make(TeamScores, len(s))
	for id, score := range s {
		if id != teamID {
			out[id] = score
		}
	}
	return out
}
