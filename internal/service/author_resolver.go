package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/framez/internal/cache"
	"github.com/weiawesome/framez/internal/consumer"
	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/repository"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// joinConcurrency caps parallel author lookups for one listing.
const joinConcurrency = 8

// AuthorResolver looks up author snapshots for posts and comments. Lookups
// of the same id in flight at once share one store read, and results are
// cached when a cache is configured.
type AuthorResolver struct {
	users repository.UserRepository
	cache cache.AuthorCache
	ttl   time.Duration
	group singleflight.Group
}

// NewAuthorResolver creates a resolver. c may be nil.
func NewAuthorResolver(users repository.UserRepository, c cache.AuthorCache, ttl time.Duration) *AuthorResolver {
	return &AuthorResolver{users: users, cache: c, ttl: ttl}
}

// Resolve returns the author for userID, or repository.ErrUserNotFound
// when the profile document is gone.
func (r *AuthorResolver) Resolve(ctx context.Context, userID string) (*domain.Author, error) {
	l := pkglog.Ctx(ctx)

	if r.cache != nil {
		author, err := r.cache.Get(ctx, userID)
		if err == nil {
			return author, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn().Err(err).Str(pkglog.FieldTargetUserID, userID).Msg("author cache get failed, falling back to db")
		}
	}

	// Every caller waiting on userID shares this read; it is detached from
	// the first caller's cancellation.
	sctx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(userID, func() (interface{}, error) {
		user, err := r.users.GetByID(sctx, userID)
		if err != nil {
			return nil, err
		}
		author := user.Author()
		if r.cache != nil {
			if err := r.cache.Set(sctx, author, r.ttl); err != nil {
				l.Warn().Err(err).Str(pkglog.FieldTargetUserID, userID).Msg("failed to cache author")
			}
		}
		return author, nil
	})
	if err != nil {
		return nil, err
	}

	author := *v.(*domain.Author)
	return &author, nil
}

// Invalidate drops cached snapshots of the given users.
func (r *AuthorResolver) Invalidate(ctx context.Context, userIDs ...string) error {
	if r.cache == nil || len(userIDs) == 0 {
		return nil
	}
	return r.cache.Delete(ctx, userIDs...)
}

// HandleCDCEvent invalidates the cached author of a changed users row.
func (r *AuthorResolver) HandleCDCEvent(ctx context.Context, event *consumer.DebeziumMessage) error {
	if !event.AuthorChanged() {
		return nil
	}
	userID := event.UserID()
	if userID == "" {
		l := pkglog.Ctx(ctx)
		l.Warn().Str("op", event.Payload.Op).Msg("CDC event without user id")
		return nil
	}
	if err := r.Invalidate(ctx, userID); err != nil {
		return fmt.Errorf("invalidate author %s: %w", userID, err)
	}
	return nil
}

// join resolves the author of every item. A missing profile yields a
// MissingAuthor row; any other lookup failure fails the whole join.
func join[T any](ctx context.Context, r *AuthorResolver, items []*T, authorID func(*T) string, attach func(*T, *domain.Author)) ([]domain.Joined[T], error) {
	rows := make([]domain.Joined[T], len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(joinConcurrency)
	for i, item := range items {
		g.Go(func() error {
			id := authorID(item)
			author, err := r.Resolve(gctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					rows[i] = domain.MissingAuthor[T](id)
					return nil
				}
				return fmt.Errorf("resolve author %s: %w", id, err)
			}
			attach(item, author)
			rows[i] = domain.Found(item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// visible drops rows whose author is gone and logs how many were dropped.
func visible[T any](ctx context.Context, kind string, rows []domain.Joined[T]) []*T {
	items, missing := domain.Partition(rows)
	if len(missing) > 0 {
		l := pkglog.Ctx(ctx)
		l.Warn().
			Str("kind", kind).
			Int("dropped", len(missing)).
			Strs("missing_author_ids", missing).
			Msg("omitting rows with missing author")
	}
	return items
}

// JoinPosts attaches authors to posts.
func (r *AuthorResolver) JoinPosts(ctx context.Context, posts []*domain.Post) ([]domain.Joined[domain.Post], error) {
	return join(ctx, r, posts,
		func(p *domain.Post) string { return p.UserID },
		func(p *domain.Post, a *domain.Author) { p.Author = a })
}

// JoinComments attaches authors to comments.
func (r *AuthorResolver) JoinComments(ctx context.Context, comments []*domain.Comment) ([]domain.Joined[domain.Comment], error) {
	return join(ctx, r, comments,
		func(c *domain.Comment) string { return c.UserID },
		func(c *domain.Comment, a *domain.Author) { c.Author = a })
}

var _ consumer.CDCEventHandler = (*AuthorResolver)(nil)
