package service

import (
	"context"
	"errors"

	"github.com/weiawesome/framez/internal/repository"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// counterService implements CounterService.
type counterService struct {
	store repository.Store
}

// NewCounterService creates a CounterService.
func NewCounterService(store repository.Store) CounterService {
	return &counterService{store: store}
}

// RepairPost sets likesCount to the size of the like set and
// commentsCount to the number of comment documents.
func (s *counterService) RepairPost(ctx context.Context, postID string) (bool, error) {
	var repaired bool
	err := s.store.Transaction(ctx, func(tx repository.Tx) error {
		post, err := tx.Posts().GetByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}

		if want := len(post.Likes); post.LikesCount != want {
			if err := tx.Posts().SaveLikes(ctx, postID, post.Likes, want); err != nil {
				return err
			}
			logRepair(ctx, "likes_count", postID, post.LikesCount, want)
			repaired = true
		}

		comments, err := tx.Comments().CountByPost(ctx, postID)
		if err != nil {
			return err
		}
		if want := int(comments); post.CommentsCount != want {
			if err := tx.Posts().SetCommentsCount(ctx, postID, want); err != nil {
				return err
			}
			logRepair(ctx, "comments_count", postID, post.CommentsCount, want)
			repaired = true
		}
		return nil
	})
	if errors.Is(err, repository.ErrPostNotFound) {
		return false, ErrNotFound
	}
	return repaired, err
}

// RepairUser sets followersCount and followingCount to the set sizes.
func (s *counterService) RepairUser(ctx context.Context, userID string) (bool, error) {
	var repaired bool
	err := s.store.Transaction(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if want := len(user.Followers); user.FollowersCount != want {
			if err := tx.Users().SaveFollowers(ctx, userID, user.Followers, want); err != nil {
				return err
			}
			logRepair(ctx, "followers_count", userID, user.FollowersCount, want)
			repaired = true
		}
		if want := len(user.Following); user.FollowingCount != want {
			if err := tx.Users().SaveFollowing(ctx, userID, user.Following, want); err != nil {
				return err
			}
			logRepair(ctx, "following_count", userID, user.FollowingCount, want)
			repaired = true
		}
		return nil
	})
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, ErrNotFound
	}
	return repaired, err
}

func logRepair(ctx context.Context, field, id string, had, want int) {
	l := pkglog.Ctx(ctx)
	l.Info().
		Str("field", field).
		Str("id", id).
		Int("had", had).
		Int("want", want).
		Msg("repaired drifted counter")
}
