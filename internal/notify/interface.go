package notify

import (
	"context"

	"github.com/weiawesome/framez/internal/domain"
)

// Publisher hands notification events to the push delivery pipeline.
type Publisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
	Close() error
}

// NopPublisher drops every event. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *domain.Notification) error { return nil }

func (NopPublisher) Close() error { return nil }
