package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/framez/internal/dbtest"
	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/repository"
	"github.com/weiawesome/framez/internal/store"
)

func newStore(t *testing.T) *repository.GormStore {
	t.Helper()
	return repository.NewGormStore(dbtest.New(t))
}

func seedUser(t *testing.T, s repository.Store, id string) *domain.UserProfile {
	t.Helper()
	u := &domain.UserProfile{ID: id, Email: id + "@framez.test", Name: "User " + id}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedPushToken(t *testing.T, s repository.Store, id string) string {
	t.Helper()
	token := "ExponentPushToken[" + id + "]"
	require.NoError(t, s.Users().UpdatePushToken(context.Background(), id, token))
	return token
}

func seedPost(t *testing.T, s repository.Store, userID, content string, at time.Time) *domain.Post {
	t.Helper()
	p := &domain.Post{UserID: userID, Content: content, Timestamp: at}
	require.NoError(t, s.Posts().Create(context.Background(), p))
	return p
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

type mockAuthorCache struct {
	mock.Mock
}

func (m *mockAuthorCache) Get(ctx context.Context, userID string) (*domain.Author, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(*domain.Author)
	return a, args.Error(1)
}

func (m *mockAuthorCache) Set(ctx context.Context, author *domain.Author, ttl time.Duration) error {
	return m.Called(ctx, author, ttl).Error(0)
}

func (m *mockAuthorCache) Delete(ctx context.Context, userIDs ...string) error {
	return m.Called(ctx, userIDs).Error(0)
}

func (m *mockAuthorCache) Close() error { return nil }

type mockHotKeys struct {
	mock.Mock
}

func (m *mockHotKeys) RecordAccess(ctx context.Context, kind store.Kind, ids ...string) error {
	return m.Called(ctx, kind, ids).Error(0)
}

func (m *mockHotKeys) TakeTopHotKeys(ctx context.Context, kind store.Kind, n int64) ([]string, error) {
	args := m.Called(ctx, kind, n)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockHotKeys) Close() error { return nil }

// notificationOf matches a published notification by type and recipient.
func notificationOf(typ, recipientID string) interface{} {
	return mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Type == typ && n.RecipientID == recipientID
	})
}
