// Package service runs the pro-team experience pipeline: fetch players,
// score and aggregate per team, rank, and assemble the report.
package service

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/okian/proteams/internal/domain/aggregate"
	"github.com/okian/proteams/internal/domain/dedupe"
	"github.com/okian/proteams/internal/domain/model"
	"github.com/okian/proteams/internal/domain/ranking"
	"github.com/okian/proteams/internal/domain/report"
	"github.com/okian/proteams/internal/domain/scoring"
	"github.com/okian/proteams/pkg/logger"
	"github.com/okian/proteams/pkg/metrics"
)

const defaultNumTeams = 5

// PlayerSource fetches the full professional player list.
type PlayerSource interface {
	FetchProPlayers(ctx context.Context) ([]model.PlayerRecord, error)
}

// Service runs report pipelines. A Service may run more than once; every run
// starts from empty aggregation state.
type Service struct {
	mu sync.RWMutex

	// Core components
	source  PlayerSource
	lookup  report.TeamLookup
	scorer  scoring.Scorer
	metrics *metrics.Manager

	// Configuration
	numTeams    int
	concurrency int
	refTime     time.Time
	clock       func() time.Time

	// Last run
	stats runStats

	logger logger.Logger
}

type runStats struct {
	runID      string
	fetched    int
	duplicates int
	warnings   int
	ranked     int
	reported   int
	skipped    int
	duration   time.Duration
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPlayerSource sets where the player list comes from.
func WithPlayerSource(src PlayerSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithTeamLookup sets the per-team metadata lookup.
func WithTeamLookup(l report.TeamLookup) Option {
	return func(s *Service) {
		if l != nil {
			s.lookup = l
		}
	}
}

// WithScorer replaces the experience scorer.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithNumTeams sets how many teams are ranked. Values <= 0 produce an empty report.
func WithNumTeams(n int) Option {
	return func(s *Service) {
		s.numTeams = n
	}
}

// WithLookupConcurrency bounds parallel team lookups.
func WithLookupConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithReferenceTime pins the instant experience is measured against.
// The zero time means "now" at the start of each run.
func WithReferenceTime(t time.Time) Option {
	return func(s *Service) {
		s.refTime = t
	}
}

// WithClock sets the wall clock used when no reference time is pinned.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics manager runs are recorded on.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scorer:      scoring.NewExperienceScorer(),
		numTeams:    defaultNumTeams,
		concurrency: 1,
		clock:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes one pipeline and returns the ranked team reports. Only a
// failure to fetch the player list, or cancellation, aborts the run; bad
// player records and failed team lookups are logged and skipped.
func (s *Service) Run(ctx context.Context) ([]model.TeamReport, error) {
	if s.source == nil || s.lookup == nil {
		return nil, ErrNotConfigured
	}
	log, m := s.deps()

	start := time.Now()
	stats := runStats{runID: uuid.NewString()}
	log = log.With(logger.String("run_id", stats.runID))

	ref := s.refTime
	if ref.IsZero() {
		ref = s.clock()
	}
	ref = ref.UTC()

	log.Info(ctx, "run started",
		logger.String("reference_time", ref.Format(time.RFC3339)),
		logger.Int("num_teams", s.numTeams),
		logger.Int("lookup_concurrency", s.concurrency))

	players, err := s.source.FetchProPlayers(ctx)
	if err != nil {
		log.Error(ctx, "fetching pro players failed", logger.Error(err))
		return nil, crerr.Mark(crerr.Wrap(err, "fetch pro players"), ErrFetchPlayers)
	}
	stats.fetched = len(players)
	m.RecordPlayersFetched(len(players))

	players = dedupe.Players(dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(players))), players,
		func(p model.PlayerRecord) {
			stats.duplicates++
			m.RecordPlayerDuplicate()
			log.Debug(ctx, "duplicate player record dropped", logger.Int64("account_id", p.AccountID))
		})

	scores := aggregate.Fold(players, ref, s.scorer, func(p model.PlayerRecord, err error) {
		stats.warnings++
		m.RecordDataQualityWarning()
		log.Warn(ctx, "player experience unavailable; counted as zero",
			logger.Int64("account_id", p.AccountID),
			logger.String("name", p.DisplayName()),
			logger.Int64("team_id", p.TeamID),
			logger.Error(err))
	})
	m.RecordPlayersScored(len(players))

	if s.numTeams <= 0 {
		log.Warn(ctx, "num_teams is not positive; report will be empty", logger.Int("num_teams", s.numTeams))
	}
	ranked := ranking.TopN(scores.Without(model.NoTeam), s.numTeams)
	stats.ranked = len(ranked)
	log.Debug(ctx, "teams ranked", logger.Any("team_ids", ranking.IDs(ranked)))

	builder := report.NewBuilder(s.lookup,
		report.WithLogger(log.Named("report")),
		report.WithScorer(s.scorer),
		report.WithConcurrency(s.concurrency),
		report.WithMetrics(m),
	)
	res := builder.Build(ctx, ranked, players, ref)
	if err := ctx.Err(); err != nil {
		return nil, crerr.Wrap(err, "run interrupted")
	}

	stats.reported = len(res.Reports)
	stats.skipped = len(res.Skipped)
	stats.duration = time.Since(start)
	m.UpdateTeamsReported(len(res.Reports))
	m.RecordRunDuration(float64(stats.duration.Microseconds()) / 1000)

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()

	log.Info(ctx, "run finished",
		logger.Int("players", stats.fetched),
		logger.Int("duplicates", stats.duplicates),
		logger.Int("warnings", stats.warnings),
		logger.Int("reported", stats.reported),
		logger.Int("skipped", stats.skipped),
		logger.Duration("duration", stats.duration))

	return res.Reports, nil
}

func (s *Service) deps() (logger.Logger, *metrics.Manager) {
	log := s.logger
	if log == nil {
		log = logger.Named("service")
	}
	m := s.metrics
	if m == nil {
		m = metrics.Default()
	}
	return log, m
}

// GetStats returns counters from the most recent completed run.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"run_id":      s.stats.runID,
		"players":     s.stats.fetched,
		"duplicates":  s.stats.duplicates,
		"warnings":    s.stats.warnings,
		"ranked":      s.stats.ranked,
		"reported":    s.stats.reported,
		"skipped":     s.stats.skipped,
		"duration_ms": s.stats.duration.Milliseconds(),
	}
}
