package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	pkglog "github.com/weiawesome/framez/pkg/log"
)

// RedisPubSub fans events out across instances through Redis PUBLISH.
type RedisPubSub struct {
	client *redis.Client
	buffer int
}

// NewRedisPubSub connects to Redis and verifies the connection.
func NewRedisPubSub(cfg RedisConfig, buffer int) (*RedisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPubSub{client: client, buffer: buffer}, nil
}

// Publish publishes an event to the specified channel.
func (r *RedisPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe opens a dedicated Redis subscription for the caller.
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	sub := r.client.Subscribe(ctx, channel)
	// Wait for the subscription confirmation so events published right
	// after Subscribe returns are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan *Event, r.buffer)
	go r.forward(ctx, sub, channel, out)
	return out, nil
}

func (r *RedisPubSub) forward(ctx context.Context, sub *redis.PubSub, channel string, out chan<- *Event) {
	defer close(out)
	defer sub.Close()

	l := pkglog.Ctx(ctx)
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				l.Warn().Err(err).Str("channel", channel).Msg("dropping malformed pubsub event")
				continue
			}

			select {
			case out <- &event:
			case <-ctx.Done():
				return
			default:
				l.Warn().Str("channel", channel).Msg("subscriber is slow, dropping event")
			}
		}
	}
}

// Close closes the Redis client and every open subscription with it.
func (r *RedisPubSub) Close() error {
	return r.client.Close()
}

var _ PubSub = (*RedisPubSub)(nil)
