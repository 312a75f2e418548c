package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/app"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/clock"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/metrics"
	transporthttp "github.com/Sparsh-Bhaskar/Sample-Fit/internal/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. Pending migrations are applied and the configured
regions are seeded before the listener starts.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()
	logger := rt.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rt.openStore(ctx, true); err != nil {
		return err
	}
	if err := rt.seed(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clk := clock.NewSystem()
	opts := []app.Option{app.WithLogger(logger), app.WithMetrics(m), app.WithOTPWindow(rt.cfg.OTPWindow)}
	alloc := app.NewAllocationService(rt.store, clk, opts...)
	pools := app.NewPoolService(rt.store, opts...)
	ledger := app.NewLedgerService(rt.store, rt.store)

	var health transporthttp.Pinger
	if rt.pool != nil {
		health = rt.pool
	}

	handler := transporthttp.NewRouter(transporthttp.Services{
		Samples:     alloc,
		Pools:       pools,
		Processor:   app.NewManualService(rt.store, clk, opts...),
		Ledger:      ledger,
		Dashboard:   ledger,
		Corrections: app.NewCorrectionService(rt.store, alloc, rt.notifier(), rt.cfg.CorrectionContact, clk, opts...),
		Health:      health,
	}, transporthttp.RouterConfig{
		CORSOrigins:    rt.cfg.CORSOrigins,
		ExportPassword: rt.cfg.ExportPassword,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         logger.Named("http"),
	})

	server := &http.Server{
		Addr:              ":" + rt.cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening", zap.String("addr", server.Addr), zap.String("store", rt.cfg.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
