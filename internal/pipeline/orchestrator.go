// Package pipeline drives decoded transfers through classification,
// enrichment, deduplication and dispatch.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poapFeed/internal/classify"
	"poapFeed/internal/dedup"
	"poapFeed/internal/enrich"
	"poapFeed/internal/model"
	"poapFeed/internal/observability"
	"poapFeed/internal/subscriber"
)

// Source is a live event stream of one subscription.
type Source interface {
	ID() string
	Network() model.Network
	Run(ctx context.Context, out chan<- model.TransferEvent) error
}

// Replayer streams historical events of one subscription.
type Replayer interface {
	ID() string
	Network() model.Network
	Replay(ctx context.Context, from, to uint64, out chan<- model.TransferEvent) error
}

// Enricher resolves a token into a displayable record.
type Enricher interface {
	Enrich(ctx context.Context, tokenID string) (model.EnrichedRecord, error)
}

// Notifier delivers an enriched event and reports how many channels received it.
type Notifier interface {
	Dispatch(ctx context.Context, rec model.EnrichedRecord, action model.Action, tokenID string, network model.Network) int
}

type Orchestrator struct {
	enricher    Enricher
	guard       *dedup.Guard
	notifier    Notifier
	logger      *zap.Logger
	metrics     *observability.Metrics
	maxInFlight int
}

// New builds an Orchestrator. maxInFlight bounds concurrent events per subscription.
func New(enricher Enricher, notifier Notifier, maxInFlight int, logger *zap.Logger, metrics *observability.Metrics) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Orchestrator{
		enricher:    enricher,
		guard:       dedup.NewGuard(),
		notifier:    notifier,
		logger:      logger,
		metrics:     metrics,
		maxInFlight: maxInFlight,
	}
}

// Run processes every source until ctx is done. A source that gives up is
// logged; the remaining sources keep running.
func (o *Orchestrator) Run(ctx context.Context, sources ...Source) error {
	var g errgroup.Group
	for _, src := range sources {
		src := src
		g.Go(func() error {
			o.runSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() == nil {
		o.logger.Error("all subscriptions stopped, waiting for shutdown")
		<-ctx.Done()
	}
	return nil
}

func (o *Orchestrator) runSource(ctx context.Context, src Source) {
	logger := o.logger.With(zap.String("subscription", src.ID()))
	events := make(chan model.TransferEvent)

	var g errgroup.Group
	g.Go(func() error {
		return src.Run(ctx, events)
	})
	g.Go(func() error {
		o.consume(ctx, src.ID(), events)
		return nil
	})

	err := g.Wait()
	switch {
	case errors.Is(err, subscriber.ErrReconnectExhausted):
		logger.Error("subscription gave up", zap.Error(err))
	case err != nil:
		logger.Error("subscription failed", zap.Error(err))
	default:
		logger.Info("subscription stopped")
	}
}

// Replay pushes a historical range of src through the pipeline.
func (o *Orchestrator) Replay(ctx context.Context, src Replayer, from, to uint64) error {
	events := make(chan model.TransferEvent)

	var g errgroup.Group
	g.Go(func() error {
		return src.Replay(ctx, from, to, events)
	})
	g.Go(func() error {
		o.consume(ctx, src.ID(), events)
		return nil
	})
	return g.Wait()
}

// consume handles events until the channel closes. Events of one subscription
// may complete out of order; the guard does not depend on arrival order.
func (o *Orchestrator) consume(ctx context.Context, subscriptionID string, events <-chan model.TransferEvent) {
	var workers errgroup.Group
	workers.SetLimit(o.maxInFlight)
	for event := range events {
		event := event
		workers.Go(func() error {
			o.Handle(ctx, subscriptionID, event)
			return nil
		})
	}
	_ = workers.Wait()
}

// Handle runs one event through the pipeline. It reports whether a
// notification was dispatched.
func (o *Orchestrator) Handle(ctx context.Context, subscriptionID string, event model.TransferEvent) bool {
	network := event.Network.String()
	action := classify.Event(event)

	start := time.Now()
	rec, err := o.enricher.Enrich(ctx, event.TokenID)
	if err != nil {
		o.metrics.ObserveEnrich(network, "failure", time.Since(start))
		if ctx.Err() != nil {
			return false
		}

		stage := "enrich"
		var lookupErr *enrich.LookupError
		if errors.As(err, &lookupErr) {
			stage = string(lookupErr.Stage)
		}
		o.metrics.EventDropped(network, stage)
		o.logger.Warn("event dropped",
			zap.String("stage", stage),
			zap.String("network", network),
			zap.String("token_id", event.TokenID),
			zap.String("tx", event.TxHash),
			zap.Error(err),
		)
		return false
	}
	o.metrics.ObserveEnrich(network, "success", time.Since(start))

	if !o.guard.Admit(subscriptionID, event.TxHash) {
		o.metrics.EventSuppressed(network)
		o.logger.Debug("duplicate suppressed",
			zap.String("network", network),
			zap.String("token_id", event.TokenID),
			zap.String("tx", event.TxHash),
		)
		return false
	}

	sent := o.notifier.Dispatch(ctx, rec, action, event.TokenID, event.Network)
	o.logger.Info("notification dispatched",
		zap.String("network", network),
		zap.String("action", string(action)),
		zap.String("token_id", event.TokenID),
		zap.String("tx", event.TxHash),
		zap.Int("channels", sent),
	)
	return true
}
