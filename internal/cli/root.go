package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lifesync/config"
	"lifesync/internal/analytics"
	"lifesync/internal/repository"
	"lifesync/pkg/db"
	"lifesync/pkg/logger"
)

// Env is what a command needs to run: the loaded config, the service and a cleanup hook.
type Env struct {
	Config  *config.Config
	Service *analytics.Service
	Logger  *zap.Logger
	Migrate func(ctx context.Context) error
	Close   func()
}

// Opener builds an Env. Tests replace it with an in-memory one.
type Opener func(opts *RootOptions) (*Env, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	UserID     int
	Verbose    bool
	open       Opener
	loadConfig func() (*config.Config, error)
}

// NewRootCommand creates the analyticsctl root command backed by PostgreSQL.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(OpenPostgres, config.Load)
}

func NewRootCommandWith(open Opener, loadConfig func() (*config.Config, error)) *cobra.Command {
	opts := &RootOptions{open: open, loadConfig: loadConfig}

	cmd := &cobra.Command{
		Use:           "analyticsctl",
		Short:         "Compute habit and task analytics from the command line",
		Long:          "One-shot access to the analytics aggregators using the service config (CONFIG_ENV, CONFIG_DIR).",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().IntVar(&opts.UserID, "user", 0, "owner user id")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(newStreaksCommand(opts))
	cmd.AddCommand(newHeatmapCommand(opts))
	cmd.AddCommand(newCorrelationsCommand(opts))
	cmd.AddCommand(newProductivityCommand(opts))
	cmd.AddCommand(newCompareCommand(opts))
	cmd.AddCommand(newOverviewCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	return cmd
}

// OpenPostgres loads the config and connects to the configured database.
func OpenPostgres(opts *RootOptions) (*Env, error) {
	level := zapcore.WarnLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	log := logger.NewDevelopment(level)

	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	svc := analytics.NewService(repository.NewStore(pool, nil), analytics.Options{
		Location:        cfg.Location(),
		LookbackDays:    cfg.Analytics.LookbackDays,
		CorrelationDays: cfg.Analytics.CorrelationDays,
		MinOverlapDays:  cfg.Analytics.MinOverlapDays,
		TopCorrelations: cfg.Analytics.TopCorrelations,
	}, log)

	return &Env{
		Config:  cfg,
		Service: svc,
		Logger:  log,
		Migrate: func(ctx context.Context) error { return repository.EnsureSchema(ctx, pool) },
		Close: func() {
			pool.Close()
			_ = log.Sync()
		},
	}, nil
}

// withEnv opens the environment, runs fn and always closes it.
func withEnv(opts *RootOptions, requireUser bool, fn func(env *Env) error) error {
	if requireUser && opts.UserID <= 0 {
		return fmt.Errorf("--user is required")
	}
	env, err := opts.open(opts)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
