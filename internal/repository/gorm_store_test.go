package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/framez/internal/dbtest"
	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/pkg/database"
)

func newStore(t *testing.T) *GormStore {
	t.Helper()
	return NewGormStore(dbtest.New(t))
}

func seedUser(t *testing.T, s *GormStore, id string) *domain.UserProfile {
	t.Helper()
	u := &domain.UserProfile{ID: id, Email: id + "@framez.test", Name: "User " + id}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	created := seedUser(t, s, "u1")
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "User u1", got.Name)
	assert.Equal(t, database.StringArray{}, got.Followers)
	assert.Equal(t, 0, got.FollowingCount)

	_, err = s.Users().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = s.Users().Create(ctx, &domain.UserProfile{ID: "u2", Email: "u1@framez.test", Name: "dup"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepository_UpdateProfileOnlyTouchesSuppliedFields(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1")

	bio := "hello"
	require.NoError(t, s.Users().UpdateProfile(ctx, "u1", &domain.UpdateProfileRequest{Bio: &bio}))

	got, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "User u1", got.Name)
	require.NotNil(t, got.Bio)
	assert.Equal(t, "hello", *got.Bio)
	assert.Nil(t, got.Avatar)

	name := "x"
	err = s.Users().UpdateProfile(ctx, "missing", &domain.UpdateProfileRequest{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_PushToken(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1")

	require.NoError(t, s.Users().UpdatePushToken(ctx, "u1", "ExponentPushToken[abc]"))
	got, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.PushToken)
	assert.Equal(t, "ExponentPushToken[abc]", *got.PushToken)

	require.NoError(t, s.Users().UpdatePushToken(ctx, "u1", ""))
	got, err = s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got.PushToken)
}

func TestPostRepository_ListIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []*domain.Post{
		{ID: "a", UserID: "u1", Content: "oldest", Timestamp: base},
		{ID: "c", UserID: "u2", Content: "newest", Timestamp: base.Add(2 * time.Minute)},
		{ID: "b", UserID: "u1", Content: "tie-low", Timestamp: base.Add(time.Minute)},
		{ID: "d", UserID: "u1", Content: "tie-high", Timestamp: base.Add(time.Minute)},
	}
	for _, p := range posts {
		require.NoError(t, s.Posts().Create(ctx, p))
	}

	all, err := s.Posts().List(ctx, ListPostsFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "b", "a"}, postIDs(all))

	mine, err := s.Posts().List(ctx, ListPostsFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "a"}, postIDs(mine))

	limited, err := s.Posts().List(ctx, ListPostsFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, postIDs(limited))
}

func TestPostRepository_Counters(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Posts().Create(ctx, &domain.Post{ID: "p1", UserID: "u1", Content: "hello"}))

	require.NoError(t, s.Posts().IncrementCommentsCount(ctx, "p1", 1))
	require.NoError(t, s.Posts().IncrementCommentsCount(ctx, "p1", 1))
	assert.ErrorIs(t, s.Posts().IncrementCommentsCount(ctx, "nope", 1), ErrPostNotFound)

	require.NoError(t, s.Posts().SaveLikes(ctx, "p1", database.StringArray{"u2"}, 1))

	got, err := s.Posts().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentsCount)
	assert.Equal(t, database.StringArray{"u2"}, got.Likes)
	assert.Equal(t, 1, got.LikesCount)

	require.NoError(t, s.Posts().SetCommentsCount(ctx, "p1", 0))
	got, err = s.Posts().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCount)
}

func TestCommentRepository_ListCountDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, s.Comments().Create(ctx, &domain.Comment{
			ID: id, PostID: "p1", UserID: "u1", Content: id, Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, s.Comments().Create(ctx, &domain.Comment{ID: "other", PostID: "p2", UserID: "u1", Content: "x"}))

	list, err := s.Comments().ListByPost(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c3", list[0].ID)
	assert.Equal(t, "c1", list[2].ID)

	n, err := s.Comments().CountByPost(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	deleted, err := s.Comments().DeleteByPost(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	_, err = s.Comments().GetByID(ctx, "c1")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = s.Comments().GetByID(ctx, "other")
	assert.NoError(t, err)
}

func TestGormStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Posts().Create(ctx, &domain.Post{ID: "p1", UserID: "u1", Content: "hello"}))

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx Tx) error {
		post, err := tx.Posts().GetByIDForUpdate(ctx, "p1")
		require.NoError(t, err)
		require.NoError(t, tx.Posts().SaveLikes(ctx, post.ID, post.Likes.With("u2"), 1))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Posts().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Equal(t, 0, got.LikesCount)
}

func TestPostRepository_Delete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Posts().Create(ctx, &domain.Post{ID: "p1", UserID: "u1", Content: "hello"}))

	require.NoError(t, s.Posts().Delete(ctx, "p1"))
	assert.ErrorIs(t, s.Posts().Delete(ctx, "p1"), ErrPostNotFound)
}

func postIDs(posts []*domain.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
