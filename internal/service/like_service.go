package service

import (
	"context"
	"errors"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/notify"
	"github.com/weiawesome/framez/internal/repository"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// likeService implements LikeService.
type likeService struct {
	store    repository.Store
	notifier *notifier
}

// NewLikeService creates a LikeService. pub may be nil.
func NewLikeService(store repository.Store, authors *AuthorResolver, pub notify.Publisher) LikeService {
	return &likeService{
		store:    store,
		notifier: newNotifier(pub, store.Users(), authors),
	}
}

// Like adds userID to the post's like set. Liking twice is a no-op.
func (s *likeService) Like(ctx context.Context, userID, postID string) (*domain.Post, error) {
	post, changed, err := s.toggle(ctx, userID, postID, true)
	if err != nil {
		return nil, err
	}
	if changed {
		s.notifier.send(ctx, domain.NotificationPostLiked, userID, post.UserID, func(n *domain.Notification) {
			n.PostID = post.ID
		})
	}
	return post, nil
}

// Unlike removes userID from the post's like set. Unliking a post that
// was not liked is a no-op.
func (s *likeService) Unlike(ctx context.Context, userID, postID string) (*domain.Post, error) {
	post, _, err := s.toggle(ctx, userID, postID, false)
	return post, err
}

// toggle reads the post under a row lock and rewrites the like set and
// its count in the same transaction.
func (s *likeService) toggle(ctx context.Context, userID, postID string, like bool) (*domain.Post, bool, error) {
	l := pkglog.Ctx(ctx)

	var (
		post    *domain.Post
		changed bool
	)
	err := s.store.Transaction(ctx, func(tx repository.Tx) error {
		p, err := tx.Posts().GetByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}

		has := p.Likes.Contains(userID)
		switch {
		case like && !has:
			p.Likes = p.Likes.With(userID)
			p.LikesCount++
		case !like && has:
			p.Likes = p.Likes.Without(userID)
			p.LikesCount = max(p.LikesCount-1, 0)
		default:
			post = p
			return nil
		}

		if err := tx.Posts().SaveLikes(ctx, p.ID, p.Likes, p.LikesCount); err != nil {
			return err
		}
		post, changed = p, true
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, false, ErrNotFound
		}
		l.Error().Err(err).
			Str(pkglog.FieldPostID, postID).
			Bool("like", like).
			Msg("failed to toggle like")
		return nil, false, writeFailed("toggle like", err)
	}
	return post, changed, nil
}
