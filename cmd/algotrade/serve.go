package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/api"
	"github.com/uodit05/algo-trade-test-1/internal/feed/yahoo"
	"github.com/uodit05/algo-trade-test-1/internal/logger"
	"github.com/uodit05/algo-trade-test-1/internal/metrics"
	"github.com/uodit05/algo-trade-test-1/internal/scanner"
	"github.com/uodit05/algo-trade-test-1/internal/session"
	signalstore "github.com/uodit05/algo-trade-test-1/internal/storage/signal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulation server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if !debug {
		log, err = logger.FromConfig(cfg.Log.Mode, cfg.Log.Level)
		if err != nil {
			return err
		}
	}
	defer log.Sync()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	arch, err := buildArchive(cfg)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	reg.SetUniverseSize(len(cfg.Simulation.Universe))
	provider := yahoo.New(log)
	signals := signalstore.NewMemoryStore(cfg.Simulation.SignalLogSize)

	hub := api.NewHub(log, reg)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	opts := []session.Option{
		session.WithSignalStore(signals),
		session.WithMetrics(reg),
		session.WithBroadcaster(hub),
	}
	if arch != nil {
		opts = append(opts, session.WithArchive(arch))
	}
	manager := session.New(provider, registry, session.Defaults{
		Tickers:        cfg.Simulation.Universe,
		Interval:       cfg.Simulation.Interval,
		Period:         cfg.Simulation.Period,
		InitialCash:    cfg.Simulation.InitialCash,
		CommissionRate: cfg.Simulation.CommissionRate,
		TickDelay:      cfg.Simulation.TickDelay,
	}, log, opts...)

	server, err := api.NewServer(api.Config{
		Host:   cfg.Server.Host,
		Port:   cfg.Server.Port,
		APIKey: cfg.Server.APIKey,
	}, api.Deps{
		Manager:  manager,
		Registry: registry,
		Scanner:  scanner.New(provider, registry, log),
		Signals:  signals,
		Archive:  arch,
		Metrics:  reg,
		Hub:      hub,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	log.Info("starting simulation server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Strings("strategies", registry.Names()),
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	if err := manager.Stop(); err == nil {
		manager.Wait()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
