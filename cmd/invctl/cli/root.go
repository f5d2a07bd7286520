// Package cli implements the invctl operator commands.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/rudraroyaltypython/inventory-sys/internal/accounting"
	"github.com/rudraroyaltypython/inventory-sys/internal/app"
	"github.com/rudraroyaltypython/inventory-sys/internal/inventory"
	"github.com/rudraroyaltypython/inventory-sys/internal/platform/cache"
	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
)

// Catalog is the product feed surface used by import and export.
type Catalog interface {
	Import(ctx context.Context, r io.Reader) (inventory.ImportResult, error)
	Export(ctx context.Context, w io.Writer) error
}

// Ledger is the accounting surface used by recalc and chart loading.
type Ledger interface {
	RecalcAll(ctx context.Context) (int, error)
	LoadChart(ctx context.Context, r io.Reader) (accounting.ChartResult, error)
}

// JobQueue enqueues and inspects background jobs.
type JobQueue interface {
	Trigger(ctx context.Context, name string, feed io.Reader) (string, error)
	InspectQueues(ctx context.Context) ([]QueueStats, error)
	Close() error
}

// Runtime holds the services a command needs plus a cleanup hook.
type Runtime struct {
	Catalog Catalog
	Ledger  Ledger
	Close   func()
}

// Env supplies command dependencies. Commands only open what they use.
type Env struct {
	Logger      func(cfg *app.Config, debug bool) *slog.Logger
	OpenRuntime func(ctx context.Context, cfg *app.Config, logger *slog.Logger) (*Runtime, error)
	OpenJobs    func(cfg *app.Config) (JobQueue, error)
	LoadConfig  func(envFile string) (*app.Config, error)
}

// DefaultEnv connects to the configured PostgreSQL and redis.
func DefaultEnv() Env {
	return Env{
		Logger: func(cfg *app.Config, debug bool) *slog.Logger {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
		OpenRuntime: openRuntime,
		OpenJobs: func(cfg *app.Config) (JobQueue, error) {
			return NewJobsCLI(cfg.RedisAddr)
		},
		LoadConfig: func(envFile string) (*app.Config, error) {
			if envFile == "" {
				return app.LoadConfig()
			}
			return app.LoadConfig(envFile)
		},
	}
}

func openRuntime(ctx context.Context, cfg *app.Config, logger *slog.Logger) (*Runtime, error) {
	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: int32(cfg.RecalcConcurrency + 1)})
	if err != nil {
		return nil, err
	}
	closers := []func(){pool.Close}
	var lockStore redis.UniversalClient
	if client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr}); err != nil {
		logger.Warn("redis unavailable, catalog lock disabled", slog.Any("error", err))
	} else {
		lockStore = client
		closers = append(closers, func() { _ = client.Close() })
	}
	services := app.BuildServices(cfg, pool, lockStore, nil, logger)
	return &Runtime{
		Catalog: services.Catalog,
		Ledger:  services.Accounting,
		Close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

type state struct {
	env     Env
	envFile string
	debug   bool
	cfg     *app.Config
	logger  *slog.Logger
}

func (s *state) runtime(cmd *cobra.Command) (*Runtime, error) {
	if s.env.OpenRuntime == nil {
		return nil, errors.New("invctl: no runtime configured")
	}
	return s.env.OpenRuntime(cmd.Context(), s.cfg, s.logger)
}

// NewRootCommand builds the invctl command tree.
func NewRootCommand(env Env) *cobra.Command {
	st := &state{env: env}
	root := &cobra.Command{
		Use:          "invctl",
		Short:        "Operate the inventory and accounting service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := env.LoadConfig(st.envFile)
			if err != nil {
				return err
			}
			st.cfg = cfg
			st.logger = env.Logger(cfg, st.debug)
			slog.SetDefault(st.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&st.envFile, "env-file", "", "dotenv file to load before the environment (default .env)")
	root.PersistentFlags().BoolVar(&st.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newImportCommand(st),
		newExportCommand(st),
		newRecalcCommand(st),
		newAccountsCommand(st),
		newJobsCommand(st),
	)
	return root
}
