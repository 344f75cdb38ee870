package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/proteams/internal/adapters/opendota"
	"github.com/okian/proteams/internal/adapters/sink"
	service "github.com/okian/proteams/internal/app"
	"github.com/okian/proteams/internal/config"
	"github.com/okian/proteams/pkg/logger"
	"github.com/okian/proteams/pkg/metrics"
)

const semanticVersion = "v0.3.0"

// Flag names.
const (
	flagNumTeams      = "num-teams"
	flagLogLevel      = "loglevel"
	flagFormat        = "format"
	flagReferenceTime = "reference-time"
	flagConcurrency   = "concurrency"
	flagMetricsFile   = "metrics-file"
	flagAPIBaseURL    = "api-base-url"
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		stop()
		logger.Get().Fatal(ctx, "proteams failed", logger.Error(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "proteams",
		Usage:       "Find the DOTA 2 teams with the most combined player *experience",
		Description: "*Experience is defined as the length of a player's recorded history.",
		Version:     semanticVersion,
		ArgsUsage:   "[output]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    flagNumTeams,
				Aliases: []string{"n"},
				Usage:   "number of teams in output",
				Value:   config.DefaultNumTeams,
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				Aliases: []string{"l"},
				Usage:   "Only output log messages of this severity or above (CRITICAL, ERROR, WARNING, INFO, DEBUG). Writes to stderr.",
				Value:   "WARNING",
			},
			&cli.StringFlag{
				Name:    flagFormat,
				Aliases: []string{"f"},
				Usage:   "Output format: yaml or text",
				Value:   config.DefaultOutputFormat,
			},
			&cli.StringFlag{
				Name:  flagReferenceTime,
				Usage: "RFC 3339 instant experience is measured against (default: now)",
			},
			&cli.IntFlag{
				Name:  flagConcurrency,
				Usage: "maximum parallel team lookups",
				Value: config.DefaultLookupConcurrency,
			},
			&cli.StringFlag{
				Name:  flagMetricsFile,
				Usage: "write Prometheus metrics in text format to this path after the run",
			},
			&cli.StringFlag{
				Name:  flagAPIBaseURL,
				Usage: "OpenDota API root",
				Value: config.DefaultAPIBaseURL,
			},
		},
		Action: run,
	}
}

func run(cCtx *cli.Context) error {
	ctx := cCtx.Context
	if cCtx.NArg() > 1 {
		return fmt.Errorf("%w: expected at most one output path, got %d", config.ErrInvalidConfig, cCtx.NArg())
	}

	// Load configuration (defaults -> optional file -> env), then flags.
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	applyFlags(cCtx, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	ref, err := parseReferenceTime(cCtx.String(flagReferenceTime))
	if err != nil {
		return err
	}

	log := logger.Get()
	m := metrics.Default()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
				log.Error(ctx, "writing metrics file failed", logger.String("path", cfg.MetricsFile), logger.Error(err))
			}
		}()
	}

	client := opendota.NewClient(opendota.ClientConfig{
		BaseURL: cfg.APIBaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.RequestTimeout(),
		Logger:  logger.Named("opendota"),
		Metrics: m,
	})

	svc := service.New(
		service.WithLogger(logger.Named("service")),
		service.WithPlayerSource(client),
		service.WithTeamLookup(client),
		service.WithNumTeams(cfg.NumTeams),
		service.WithLookupConcurrency(cfg.LookupConcurrency),
		service.WithReferenceTime(ref),
		service.WithMetrics(m),
	)

	reports, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	out := sink.Open(cCtx.Args().First())
	s, err := sink.New(cfg.OutputFormat, out)
	if err != nil {
		_ = out.Close()
		return err
	}
	if err := s.Emit(ctx, reports); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cCtx *cli.Context, cfg *config.Config) {
	if cCtx.IsSet(flagNumTeams) {
		cfg.NumTeams = cCtx.Int(flagNumTeams)
	}
	if cCtx.IsSet(flagLogLevel) {
		cfg.LogLevel = cCtx.String(flagLogLevel)
	}
	if cCtx.IsSet(flagFormat) {
		cfg.OutputFormat = cCtx.String(flagFormat)
	}
	if cCtx.IsSet(flagConcurrency) {
		cfg.LookupConcurrency = cCtx.Int(flagConcurrency)
	}
	if cCtx.IsSet(flagMetricsFile) {
		cfg.MetricsFile = cCtx.String(flagMetricsFile)
	}
	if cCtx.IsSet(flagAPIBaseURL) {
		cfg.APIBaseURL = cCtx.String(flagAPIBaseURL)
	}
}

func parseReferenceTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --%s: %w", config.ErrInvalidConfig, flagReferenceTime, err)
	}
	return t, nil
}
