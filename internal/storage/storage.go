package storage

import (
	"context"

	"poapFeed/internal/model"
)

// Sink receives rendered notifications alongside the chat channels.
type Sink interface {
	Publish(ctx context.Context, n model.Notification) error
	Close() error
}
