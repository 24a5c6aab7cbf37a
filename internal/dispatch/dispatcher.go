// Package dispatch renders enriched events and fans them out to chat channels.
package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"poapFeed/internal/model"
	"poapFeed/internal/observability"
)

// Config names the destinations.
type Config struct {
	PrimaryChannel    string
	RestrictedChannel string
	// RestrictedNetwork is the only network delivered to RestrictedChannel.
	RestrictedNetwork model.Network
}

// Dispatcher sends rendered notifications to the configured channels.
type Dispatcher struct {
	cfg      Config
	resolver ChannelResolver
	mirrors  []Mirror
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewDispatcher(cfg Config, resolver ChannelResolver, logger *zap.Logger, metrics *observability.Metrics, mirrors ...Mirror) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		cfg:      cfg,
		resolver: resolver,
		mirrors:  mirrors,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Dispatch renders the event and sends it to the primary channel and, for the
// restricted network, to the restricted channel. Unresolved channels are skipped.
// It returns the number of chat channels the message was delivered to.
func (d *Dispatcher) Dispatch(ctx context.Context, rec model.EnrichedRecord, action model.Action, tokenID string, network model.Network) int {
	msg := Render(rec, action, tokenID, network, d.now())

	sent := 0
	if d.send(ctx, "primary", d.cfg.PrimaryChannel, msg) {
		sent++
	}
	if network == d.cfg.RestrictedNetwork && d.send(ctx, "restricted", d.cfg.RestrictedChannel, msg) {
		sent++
	}

	for _, mirror := range d.mirrors {
		if err := mirror.Publish(ctx, msg); err != nil {
			d.metrics.SendFailed(network.String(), "mirror")
			d.logger.Warn("mirror publish failed", zap.String("token_id", tokenID), zap.Error(err))
			continue
		}
		d.metrics.NotificationSent(network.String(), "mirror")
	}

	return sent
}

func (d *Dispatcher) send(ctx context.Context, destination, name string, msg model.Notification) bool {
	if d.resolver == nil || name == "" {
		return false
	}
	channel, ok := d.resolver.ResolveChannel(name)
	if !ok {
		d.logger.Debug("channel not found", zap.String("channel", name))
		return false
	}

	network := msg.Network.String()
	if err := channel.Send(ctx, msg); err != nil {
		d.metrics.SendFailed(network, destination)
		d.logger.Warn("event dropped",
			zap.String("stage", "dispatch"),
			zap.String("network", network),
			zap.String("channel", channel.Name()),
			zap.String("token_id", msg.TokenID),
			zap.Error(err),
		)
		return false
	}

	d.metrics.NotificationSent(network, destination)
	return true
}
