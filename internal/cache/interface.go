package cache

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/framez/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// AuthorCache holds author snapshots keyed by user id.
type AuthorCache interface {
	Get(ctx context.Context, userID string) (*domain.Author, error)
	Set(ctx context.Context, author *domain.Author, ttl time.Duration) error
	Delete(ctx context.Context, userIDs ...string) error
	Close() error
}
