package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/app"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/config"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/logging"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/notify"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/storage/memory"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/storage/postgres"
	"github.com/Sparsh-Bhaskar/Sample-Fit/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const startupTimeout = 5 * time.Second

// store is everything the services need from a backend.
type store interface {
	app.AllocationRepository
	app.ManualRepository
	app.PoolRepository
	app.CorrectionRepository
	app.LedgerReader
}

type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	store  store
	// pool is nil for the in-memory store.
	pool *pgxpool.Pool
}

// loadRuntime reads configuration and builds the logger. The store is opened
// separately so commands that need Postgres can insist on it.
func loadRuntime() (*runtime, error) {
	env, envErr := config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		if envErr != nil {
			return nil, fmt.Errorf("%w (env file %s: %v)", err, env.Path, envErr)
		}
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, err
	}
	logDotEnv(logger, env, envErr)
	return &runtime{cfg: cfg, logger: logger}, nil
}

func logDotEnv(logger *zap.Logger, env config.DotEnv, err error) {
	switch {
	case err != nil:
		logger.Warn("failed to load env file", zap.String("path", env.Path), zap.Error(err))
	case env.Path == "":
		logger.Debug(".env not found in current or parent directories")
	default:
		logger.Info("loaded env file", zap.String("path", env.Path), zap.Strings("applied", env.Applied))
	}
}

func (rt *runtime) openStore(ctx context.Context, migrate bool) error {
	if rt.cfg.Store == config.StoreMemory {
		rt.logger.Warn("using in-memory store; data is lost on exit")
		rt.store = memory.NewStore()
		return nil
	}

	pool, err := rt.connect(ctx)
	if err != nil {
		return err
	}
	if migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	pg, err := postgres.NewStore(pool)
	if err != nil {
		pool.Close()
		return err
	}
	rt.pool = pool
	rt.store = pg
	return nil
}

func (rt *runtime) connect(ctx context.Context) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, rt.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}

func (rt *runtime) notifier() app.Notifier {
	if rt.cfg.SMTP.Host == "" {
		rt.logger.Warn("SMTP_HOST not set; correction passcodes are written to the log")
		return notify.NewLogSender(rt.logger.Named("notify"))
	}
	return notify.NewSMTPSender(notify.SMTPConfig{
		Host:     rt.cfg.SMTP.Host,
		Port:     rt.cfg.SMTP.Port,
		Username: rt.cfg.SMTP.Username,
		Password: rt.cfg.SMTP.Password,
		From:     rt.cfg.SMTP.From,
	}, rt.logger.Named("notify"))
}

func (rt *runtime) seed(ctx context.Context) error {
	regions, err := config.LoadRegions(rt.cfg.RegionsFile)
	if err != nil {
		return err
	}
	return app.NewPoolService(rt.store, app.WithLogger(rt.logger)).Bootstrap(ctx, regions)
}

func (rt *runtime) close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
	_ = rt.logger.Sync()
}
