package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/framez/internal/domain"
)

// RedisAuthorCache stores author snapshots as JSON strings.
type RedisAuthorCache struct {
	client *redis.Client
	prefix string
}

// NewRedisAuthorCache connects to Redis and verifies the connection.
func NewRedisAuthorCache(address, password string, db int, prefix string) (*RedisAuthorCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisAuthorCache{client: client, prefix: prefix}, nil
}

func (c *RedisAuthorCache) key(userID string) string {
	return fmt.Sprintf("%s:author:%s", c.prefix, userID)
}

func (c *RedisAuthorCache) Get(ctx context.Context, userID string) (*domain.Author, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var author domain.Author
	if err := json.Unmarshal(data, &author); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &author, nil
}

func (c *RedisAuthorCache) Set(ctx context.Context, author *domain.Author, ttl time.Duration) error {
	data, err := json.Marshal(author)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}
	if err := c.client.Set(ctx, c.key(author.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisAuthorCache) Delete(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.key(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (c *RedisAuthorCache) Close() error {
	return c.client.Close()
}

var _ AuthorCache = (*RedisAuthorCache)(nil)
