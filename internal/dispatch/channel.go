package dispatch

import (
	"context"

	"poapFeed/internal/model"
)

// Channel is a resolved chat destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, n model.Notification) error
}

// ChannelResolver looks up a chat channel by its configured name.
type ChannelResolver interface {
	ResolveChannel(name string) (Channel, bool)
}

// Mirror receives a copy of every dispatched notification.
type Mirror interface {
	Publish(ctx context.Context, n model.Notification) error
}
