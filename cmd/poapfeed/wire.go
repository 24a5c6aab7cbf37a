package main

import (
	"fmt"

	"go.uber.org/zap"

	"poapFeed/internal/config"
	"poapFeed/internal/discord"
	"poapFeed/internal/dispatch"
	"poapFeed/internal/enrich"
	"poapFeed/internal/model"
	"poapFeed/internal/observability"
	"poapFeed/internal/pipeline"
	"poapFeed/internal/storage"
	"poapFeed/internal/storage/kafka"
	"poapFeed/internal/subscriber"
)

// app holds the components shared by the run and backfill commands.
type app struct {
	orchestrator *pipeline.Orchestrator
	closers      []func() error
	logger       *zap.Logger
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
}

func buildApp(cfg config.Config, logger *zap.Logger, metrics *observability.Metrics) (*app, error) {
	a := &app{logger: logger}

	var resolver dispatch.ChannelResolver
	if cfg.DiscordToken != "" {
		client, err := discord.Open(cfg.DiscordToken, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		resolver = client
	} else {
		logger.Warn("discord token not set, chat delivery disabled")
	}

	var mirrors []dispatch.Mirror
	addSink := func(sink storage.Sink) {
		a.closers = append(a.closers, sink.Close)
		mirrors = append(mirrors, sink)
	}
	if cfg.MirrorOut != "" {
		sink, err := storage.NewJsonlSink(cfg.MirrorOut)
		if err != nil {
			a.Close()
			return nil, err
		}
		addSink(sink)
	}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := kafka.NewSink(cfg.KafkaBrokers, cfg.KafkaTopic, nil)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("kafka sink: %w", err)
		}
		addSink(sink)
	}

	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		PrimaryChannel:    cfg.DiscordChannel,
		RestrictedChannel: cfg.DiscordChannelMainnet,
		RestrictedNetwork: cfg.RestrictedNetwork,
	}, resolver, logger, metrics, mirrors...)

	enricher := enrich.NewClient(enrich.Config{
		BaseURL: cfg.APIBase,
		Timeout: cfg.LookupTimeout,
	}, logger)

	a.orchestrator = pipeline.New(enricher, dispatcher, cfg.MaxInFlight, logger, metrics)
	return a, nil
}

func newSubscriber(cfg config.Config, network model.Network, logger *zap.Logger, metrics *observability.Metrics) (*subscriber.Subscriber, error) {
	contract, err := subscriber.ParseAddress(cfg.Contract)
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	return subscriber.New(subscriber.Config{
		Network:           network,
		Endpoint:          cfg.Endpoint(network),
		Contract:          contract,
		ReconnectDelay:    cfg.ReconnectDelay,
		ReconnectAttempts: cfg.ReconnectAttempts,
		BackfillMaxBlocks: cfg.BackfillMaxBlocks,
		BackfillBatchSize: cfg.BackfillBatchSize,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, subscriber.DialChain, logger, metrics)
}
