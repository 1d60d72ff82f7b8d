package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/repository"
)

func getUser(t *testing.T, s repository.Store, id string) *domain.UserProfile {
	t.Helper()
	u, err := s.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func TestFollowService_FollowUnfollow(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1")
	seedUser(t, s, "u2")
	svc := NewFollowService(s, NewAuthorResolver(s.Users(), nil, 0), nil)

	require.NoError(t, svc.Follow(ctx, "u1", "u2"))

	u1, u2 := getUser(t, s, "u1"), getUser(t, s, "u2")
	assert.True(t, IsFollowing(u1, "u2"))
	assert.True(t, u2.Followers.Contains("u1"))
	assert.Equal(t, 1, u1.FollowingCount)
	assert.Equal(t, 1, u2.FollowersCount)

	require.NoError(t, svc.Unfollow(ctx, "u1", "u2"))

	u1, u2 = getUser(t, s, "u1"), getUser(t, s, "u2")
	assert.False(t, IsFollowing(u1, "u2"))
	assert.False(t, u2.Followers.Contains("u1"))
	assert.Equal(t, 0, u1.FollowingCount)
	assert.Equal(t, 0, u2.FollowersCount)
}

func TestFollowService_RepeatedFollowDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1")
	seedUser(t, s, "u2")
	svc := NewFollowService(s, NewAuthorResolver(s.Users(), nil, 0), nil)

	for range 3 {
		require.NoError(t, svc.Follow(ctx, "u1", "u2"))
	}
	u1, u2 := getUser(t, s, "u1"), getUser(t, s, "u2")
	assert.Equal(t, 1, u1.FollowingCount)
	assert.Len(t, u1.Following, 1)
	assert.Equal(t, 1, u2.FollowersCount)

	for range 2 {
		require.NoError(t, svc.Unfollow(ctx, "u1", "u2"))
	}
	u1, u2 = getUser(t, s, "u1"), getUser(t, s, "u2")
	assert.Equal(t, 0, u1.FollowingCount)
	assert.Equal(t, 0, u2.FollowersCount)
}

func TestFollowService_CountsFollowSetLength(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1")
	seedUser(t, s, "u2")

	// Stored counter drifted; the toggle recomputes from the set.
	require.NoError(t, s.Users().SaveFollowing(ctx, "u1", []string{"x", "y"}, 7))

	svc := NewFollowService(s, NewAuthorResolver(s.Users(), nil, 0), nil)
	require.NoError(t, svc.Follow(ctx, "u1", "u2"))
	assert.Equal(t, 3, getUser(t, s, "u1").FollowingCount)
}

func TestFollowService_Errors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1")
	svc := NewFollowService(s, NewAuthorResolver(s.Users(), nil, 0), nil)

	assert.ErrorIs(t, svc.Follow(ctx, "u1", "u1"), ErrSelfFollow)
	assert.ErrorIs(t, svc.Follow(ctx, "u1", "ghost"), ErrNotFound)
	assert.ErrorIs(t, svc.Unfollow(ctx, "ghost", "u1"), ErrNotFound)

	// Nothing was half-written.
	u1 := getUser(t, s, "u1")
	assert.Empty(t, u1.Following)
	assert.Equal(t, 0, u1.FollowingCount)
}

func TestFollowToggle_ApplyRollsBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1")
	seedUser(t, s, "u2")

	abort := errors.New("abort")
	err := s.Transaction(ctx, func(tx repository.Tx) error {
		changed, err := FollowToggle{}.Apply(ctx, tx, OpFollow, "u1", "u2")
		require.NoError(t, err)
		assert.True(t, changed)
		return abort
	})
	require.ErrorIs(t, err, abort)

	assert.Empty(t, getUser(t, s, "u1").Following)
	assert.Empty(t, getUser(t, s, "u2").Followers)
}

// lockRecordingTx notes the order in which user rows are locked.
type lockRecordingTx struct {
	repository.Tx
	locked *[]string
}

func (tx lockRecordingTx) Users() repository.UserRepository {
	return lockRecordingUsers{UserRepository: tx.Tx.Users(), locked: tx.locked}
}

type lockRecordingUsers struct {
	repository.UserRepository
	locked *[]string
}

func (u lockRecordingUsers) GetByIDForUpdate(ctx context.Context, id string) (*domain.UserProfile, error) {
	*u.locked = append(*u.locked, id)
	return u.UserRepository.GetByIDForUpdate(ctx, id)
}

func TestFollowToggle_LocksRowsInIDOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "a")
	seedUser(t, s, "b")

	tests := []struct {
		name            string
		op              FollowOp
		current, target string
	}{
		{"follow", OpFollow, "a", "b"},
		{"follow back", OpFollow, "b", "a"},
		{"unfollow back", OpUnfollow, "b", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var locked []string
			err := s.Transaction(ctx, func(tx repository.Tx) error {
				_, err := FollowToggle{}.Apply(ctx, lockRecordingTx{Tx: tx, locked: &locked}, tt.op, tt.current, tt.target)
				return err
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, locked)
		})
	}

	a := getUser(t, s, "a")
	assert.Equal(t, []string{"b"}, []string(a.Following))
	assert.Empty(t, a.Followers)
	assert.Equal(t, []string{"a"}, []string(getUser(t, s, "b").Followers))
}

func TestFollowService_NotifiesOnNewFollower(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1")
	seedUser(t, s, "u2")
	seedPushToken(t, s, "u2")

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, notificationOf(domain.NotificationUserFollowed, "u2")).Return(nil).Once()

	svc := NewFollowService(s, NewAuthorResolver(s.Users(), nil, 0), pub)
	require.NoError(t, svc.Follow(ctx, "u1", "u2"))
	require.NoError(t, svc.Follow(ctx, "u1", "u2"))
	require.NoError(t, svc.Unfollow(ctx, "u1", "u2"))

	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}
