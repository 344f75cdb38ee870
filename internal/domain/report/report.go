// Package report joins ranked teams to their metadata and players.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/okian/proteams/internal/domain/model"
	"github.com/okian/proteams/internal/domain/ranking"
	"github.com/okian/proteams/internal/domain/scoring"
	"github.com/okian/proteams/pkg/logger"
	"github.com/okian/proteams/pkg/metrics"
)

// TeamLookup fetches metadata for one team.
type TeamLookup interface {
	FetchTeam(ctx context.Context, teamID int64) (model.TeamMetadata, error)
}

// LookupFailure records a ranked team left out of the report.
type LookupFailure struct {
	TeamID int64
	Err    error // wraps ErrLookupFailure
}

// Result is the assembled report plus the teams that were skipped.
type Result struct {
	Reports []model.TeamReport
	Skipped []LookupFailure
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithScorer sets the scorer used for per-player experience.
func WithScorer(s scoring.Scorer) Option {
	return func(b *Builder) {
		if s != nil {
			b.scorer = s
		}
	}
}

// WithConcurrency bounds parallel team lookups. 1 keeps them sequential.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithMetrics sets the metrics manager lookups are recorded on.
func WithMetrics(m *metrics.Manager) Option {
	return func(b *Builder) {
		if m != nil {
			b.metrics = m
		}
	}
}

// Builder assembles the final report.
type Builder struct {
	lookup      TeamLookup
	scorer      scoring.Scorer
	concurrency int
	logger      logger.Logger
	metrics     *metrics.Manager
}

// NewBuilder creates a Builder around a team lookup.
func NewBuilder(lookup TeamLookup, opts ...Option) *Builder {
	b := &Builder{
		lookup:      lookup,
		scorer:      scoring.NewExperienceScorer(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.Named("report")
	}
	if b.metrics == nil {
		b.metrics = metrics.Default()
	}
	return b
}

type lookupOutcome struct {
	team model.TeamMetadata
	err  error
}

// Build looks up every ranked team once and returns reports in ranked order.
// A failed lookup skips that team only.
func (b *Builder) Build(ctx context.Context, ranked []ranking.TeamScore, players []model.PlayerRecord, ref time.Time) Result {
	outcomes := b.lookupAll(ctx, ranked)
	byTeam := groupByTeam(players)

	res := Result{Reports: make([]model.TeamReport, 0, len(ranked))}
	for i, ts := range ranked {
		out := outcomes[i]
		if out.err != nil {
			b.metrics.RecordTeamLookup(metrics.LookupFailed)
			b.logger.Error(ctx, "team lookup failed; skipping team",
				logger.Int64("team_id", ts.TeamID), logger.Error(out.err))
			res.Skipped = append(res.Skipped, LookupFailure{TeamID: ts.TeamID, Err: out.err})
			continue
		}
		b.metrics.RecordTeamLookup(metrics.LookupOK)
		res.Reports = append(res.Reports, b.teamReport(ctx, ts, out.team, byTeam[ts.TeamID], ref))
	}
	return res
}

func (b *Builder) lookupAll(ctx context.Context, ranked []ranking.TeamScore) []lookupOutcome {
	fetch := func(ts *ranking.TeamScore) lookupOutcome {
		team, err := b.lookup.FetchTeam(ctx, ts.TeamID)
		if err != nil {
			return lookupOutcome{err: fmt.Errorf("%w: team %d: %w", ErrLookupFailure, ts.TeamID, err)}
		}
		return lookupOutcome{team: team}
	}

	if b.concurrency <= 1 {
		outcomes := make([]lookupOutcome, len(ranked))
		for i := range ranked {
			outcomes[i] = fetch(&ranked[i])
		}
		return outcomes
	}

	// Mapper keeps input order in its output regardless of completion order.
	mapper := iter.Mapper[ranking.TeamScore, lookupOutcome]{MaxGoroutines: b.concurrency}
	return mapper.Map(ranked, fetch)
}

func (b *Builder) teamReport(ctx context.Context, ts ranking.TeamScore, team model.TeamMetadata, members []model.PlayerRecord, ref time.Time) model.TeamReport {
	name := team.Name
	if name == "" {
		b.logger.Warn(ctx, "team metadata has no name", logger.Int64("team_id", ts.TeamID))
	}

	rows := make([]model.PlayerReport, 0, len(members))
	for _, p := range members {
		// Already reported as a data-quality warning during aggregation.
		xp, err := b.scorer.Score(p, ref)
		if err != nil {
			b.logger.Debug(ctx, "player scored as zero", logger.Int64("account_id", p.AccountID), logger.Error(err))
		}
		rows = append(rows, model.PlayerReport{
			PersonaName: p.DisplayName(),
			Experience:  int64(xp),
			CountryCode: p.CountryCode,
		})
	}

	return model.TeamReport{
		TeamID:     ts.TeamID,
		Name:       name,
		Wins:       team.Wins,
		Losses:     team.Losses,
		Rating:     team.Rating,
		Experience: int64(ts.Score),
		Players:    rows,
	}
}

func groupByTeam(players []model.PlayerRecord) map[int64][]model.PlayerRecord {
	out := make(map[int64][]model.PlayerRecord)
	for _, p := range players {
		if !p.HasTeam() {
			continue
		}
		out[p.TeamID] = append(out[p.TeamID], p)
	}
	return out
}
