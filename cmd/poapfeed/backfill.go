package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poapFeed/internal/config"
	"poapFeed/internal/model"
	"poapFeed/internal/observability"
)

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	networkName, _ := cmd.Flags().GetString("network")
	network, err := model.ParseNetwork(networkName)
	if err != nil {
		return err
	}
	from, _ := cmd.Flags().GetUint64("from")
	to, _ := cmd.Flags().GetUint64("to")
	if to != 0 && to < from {
		return fmt.Errorf("invalid range: from %d > to %d", from, to)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Endpoint(network) == "" {
		return fmt.Errorf("no endpoint configured for %s", network)
	}

	metrics := observability.NewMetrics()
	sub, err := newSubscriber(cfg, network, logger, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("backfill start",
		zap.String("network", network.String()),
		zap.Uint64("from", from),
		zap.Uint64("to", to),
	)

	return a.orchestrator.Replay(ctx, sub, from, to)
}
