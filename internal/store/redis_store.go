package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Kind namespaces hot-key scores by document type.
type Kind string

const (
	KindPost Kind = "post"
	KindUser Kind = "user"
)

const hotKeyScoresPrefix = "framez:hotkey:"

// HotKeyStore tracks how often documents are read so the reconciler can
// focus on the busiest ones.
type HotKeyStore interface {
	RecordAccess(ctx context.Context, kind Kind, ids ...string) error
	// TakeTopHotKeys returns up to n of the most read ids and clears the
	// scores in the same step.
	TakeTopHotKeys(ctx context.Context, kind Kind, n int64) ([]string, error)
	Close() error
}

// RedisHotKeyStore keeps one sorted set per kind.
type RedisHotKeyStore struct {
	client *redis.Client
}

// NewRedisHotKeyStore creates a new Redis-backed hot key store.
func NewRedisHotKeyStore(address, password string, db int) (*RedisHotKeyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisHotKeyStore{client: client}, nil
}

func scoresKey(kind Kind) string {
	return hotKeyScoresPrefix + string(kind)
}

// takeTopScript reads the top ARGV[1] members and deletes the set
// atomically, so reads recorded between the two are not lost.
var takeTopScript = redis.NewScript(`
local key = KEYS[1]
local n = tonumber(ARGV[1])
local top = redis.call("ZREVRANGE", key, 0, n - 1)
redis.call("DEL", key)
return top
`)

// RecordAccess bumps the score of every id in one round trip.
func (s *RedisHotKeyStore) RecordAccess(ctx context.Context, kind Kind, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	key := scoresKey(kind)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.ZIncrBy(ctx, key, 1, id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis record access: %w", err)
	}
	return nil
}

// TakeTopHotKeys returns the hottest ids and resets the window.
func (s *RedisHotKeyStore) TakeTopHotKeys(ctx context.Context, kind Kind, n int64) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	keys, err := takeTopScript.Run(ctx, s.client, []string{scoresKey(kind)}, n).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis take top hot keys: %w", err)
	}
	return keys, nil
}

// Close closes the Redis client.
func (s *RedisHotKeyStore) Close() error {
	return s.client.Close()
}

var _ HotKeyStore = (*RedisHotKeyStore)(nil)

// NopHotKeyStore records nothing.
type NopHotKeyStore struct{}

func (NopHotKeyStore) RecordAccess(context.Context, Kind, ...string) error { return nil }
func (NopHotKeyStore) TakeTopHotKeys(context.Context, Kind, int64) ([]string, error) {
	return nil, nil
}
func (NopHotKeyStore) Close() error { return nil }

var _ HotKeyStore = NopHotKeyStore{}
