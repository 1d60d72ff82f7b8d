package service

import (
	"context"
	"errors"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/notify"
	"github.com/weiawesome/framez/internal/repository"
	"github.com/weiawesome/framez/pkg/database"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// FollowOp selects the direction of a follow toggle.
type FollowOp int

const (
	OpFollow FollowOp = iota
	OpUnfollow
)

func (op FollowOp) String() string {
	if op == OpFollow {
		return "follow"
	}
	return "unfollow"
}

// FollowToggle updates both sides of a follow edge. Counts are derived
// from the set lengths just read, so repeating an operation never drifts
// them.
type FollowToggle struct{}

// Apply runs op inside tx. Both user rows are locked in id order, so a
// follow and a follow-back racing each other queue instead of deadlocking,
// and both writes commit or roll back together with tx. It reports whether
// either set changed.
func (FollowToggle) Apply(ctx context.Context, tx repository.Tx, op FollowOp, currentUserID, targetUserID string) (bool, error) {
	if currentUserID == targetUserID {
		return false, ErrSelfFollow
	}

	users := tx.Users()
	current, target, err := lockPair(ctx, users, currentUserID, targetUserID)
	if err != nil {
		return false, err
	}

	var following, followers database.StringArray
	var followingCount, followersCount int
	switch op {
	case OpFollow:
		followingCount = len(current.Following)
		if !current.Following.Contains(targetUserID) {
			followingCount++
		}
		followersCount = len(target.Followers)
		if !target.Followers.Contains(currentUserID) {
			followersCount++
		}
		following = current.Following.With(targetUserID)
		followers = target.Followers.With(currentUserID)
	case OpUnfollow:
		followingCount = len(current.Following)
		if current.Following.Contains(targetUserID) {
			followingCount = max(followingCount-1, 0)
		}
		followersCount = len(target.Followers)
		if target.Followers.Contains(currentUserID) {
			followersCount = max(followersCount-1, 0)
		}
		following = current.Following.Without(targetUserID)
		followers = target.Followers.Without(currentUserID)
	}

	changed := len(following) != len(current.Following) || len(followers) != len(target.Followers)

	if err := users.SaveFollowing(ctx, currentUserID, following, followingCount); err != nil {
		return false, err
	}
	if err := users.SaveFollowers(ctx, targetUserID, followers, followersCount); err != nil {
		return false, err
	}
	return changed, nil
}

// lockPair locks the rows of a and b, lower id first, and returns them in
// argument order.
func lockPair(ctx context.Context, users repository.UserRepository, a, b string) (*domain.UserProfile, *domain.UserProfile, error) {
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	lockedFirst, err := users.GetByIDForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	lockedSecond, err := users.GetByIDForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}

	if first == a {
		return lockedFirst, lockedSecond, nil
	}
	return lockedSecond, lockedFirst, nil
}

// followService implements FollowService.
type followService struct {
	store    repository.Store
	toggle   FollowToggle
	notifier *notifier
}

// NewFollowService creates a FollowService. pub may be nil.
func NewFollowService(store repository.Store, authors *AuthorResolver, pub notify.Publisher) FollowService {
	return &followService{
		store:    store,
		notifier: newNotifier(pub, store.Users(), authors),
	}
}

// Follow makes currentUserID follow targetUserID.
func (s *followService) Follow(ctx context.Context, currentUserID, targetUserID string) error {
	changed, err := s.apply(ctx, OpFollow, currentUserID, targetUserID)
	if err != nil {
		return err
	}
	if changed {
		s.notifier.send(ctx, domain.NotificationUserFollowed, currentUserID, targetUserID, nil)
	}
	return nil
}

// Unfollow removes the edge from currentUserID to targetUserID.
func (s *followService) Unfollow(ctx context.Context, currentUserID, targetUserID string) error {
	_, err := s.apply(ctx, OpUnfollow, currentUserID, targetUserID)
	return err
}

func (s *followService) apply(ctx context.Context, op FollowOp, currentUserID, targetUserID string) (bool, error) {
	l := pkglog.Ctx(ctx)

	var changed bool
	err := s.store.Transaction(ctx, func(tx repository.Tx) error {
		var err error
		changed, err = s.toggle.Apply(ctx, tx, op, currentUserID, targetUserID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfFollow):
			return false, ErrSelfFollow
		case errors.Is(err, repository.ErrUserNotFound):
			return false, ErrNotFound
		}
		l.Error().Err(err).
			Str(pkglog.FieldTargetUserID, targetUserID).
			Str("op", op.String()).
			Msg("failed to toggle follow")
		return false, writeFailed(op.String(), err)
	}
	return changed, nil
}
