// Package ranking selects the top-N teams by aggregated experience.
package ranking

import (
	"math"
	"sort"

	"github.com/okian/proteams/internal/domain/aggregate"
	"github.com/okian/proteams/internal/domain/model"
)

// TeamScore is one ranked team.
type TeamScore struct {
	TeamID int64
	Score  float64
}

// less reports whether a ranks before b: higher score first, then lower id.
// NaN sorts after every number.
func less(a, b TeamScore) bool {
	aNaN, bNaN := math.IsNaN(a.Score), math.IsNaN(b.Score)
	if aNaN != bNaN {
		return bNaN
	}
	if !aNaN && a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.TeamID < b.TeamID
}

// TopN returns up to n teams ordered by score desc, team id asc. The
// unassigned sentinel never ranks. n <= 0 yields an empty slice.
func TopN(scores aggregate.TeamScores, n int) []TeamScore {
	if n <= 0 {
		return []TeamScore{}
	}

	all := make([]TeamScore, 0, len(scores))
	for id, score := range scores {
		if id == model.NoTeam {
			continue
		}
		all = append(all, TeamScore{TeamID: id, Score: score})
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })

	if n < len(all) {
		all = all[:n]
	}
	return all
}

// IDs returns the team ids of ranked in order.
func IDs(ranked []TeamScore) []int64 {
	ids := make([]int64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.TeamID
	}
	return ids
}
