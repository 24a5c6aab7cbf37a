package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poapFeed/internal/config"
	"poapFeed/internal/model"
	"poapFeed/internal/observability"
	"poapFeed/internal/pipeline"
)

func runFeed(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	metrics := observability.NewMetrics()

	var sources []pipeline.Source
	for _, network := range model.Networks {
		if cfg.Endpoint(network) == "" {
			logger.Warn("no endpoint configured, network skipped", zap.String("network", network.String()))
			continue
		}
		sub, err := newSubscriber(cfg, network, logger, metrics)
		if err != nil {
			return err
		}
		sources = append(sources, sub)
	}
	if len(sources) == 0 {
		return fmt.Errorf("at least one of xdai-ws or mainnet-ws is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, metrics, logger)
	}

	logger.Info("feed start",
		zap.String("contract", cfg.Contract),
		zap.Int("networks", len(sources)),
		zap.String("channel", cfg.DiscordChannel),
		zap.String("restricted_channel", cfg.DiscordChannelMainnet),
		zap.String("restricted_network", cfg.RestrictedNetwork.String()),
		zap.Int("max_inflight", cfg.MaxInFlight),
	)

	return a.orchestrator.Run(ctx, sources...)
}

func serveMetrics(ctx context.Context, addr string, metrics *observability.Metrics, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", zap.Error(err))
	}
}
