package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/repository"
	"github.com/weiawesome/framez/internal/validate"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// brokenCounterStore fails every comment-count increment.
type brokenCounterStore struct {
	*repository.GormStore
}

func (s brokenCounterStore) Posts() repository.PostRepository {
	return brokenCounterPosts{s.GormStore.Posts()}
}

type brokenCounterPosts struct {
	repository.PostRepository
}

func (brokenCounterPosts) IncrementCommentsCount(context.Context, string, int) error {
	return errors.New("counter unavailable")
}

func TestCommentService_CreateIncrementsCount(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "author")
	seedUser(t, s, "reader")
	post := seedPost(t, s, "author", "hello", time.Now())

	svc := NewCommentService(s, NewAuthorResolver(s.Users(), nil, 0), nil)

	c, err := svc.CreateComment(ctx, "reader", &domain.CreateCommentRequest{PostID: post.ID, Content: "  nice  "})
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Content)
	require.NotNil(t, c.Author)
	assert.Equal(t, "User reader", c.Author.Name)

	stored, err := s.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentsCount)
}

func TestCommentService_IncrementFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "author")
	post := seedPost(t, s, "author", "hello", time.Now())

	svc := NewCommentService(brokenCounterStore{s}, NewAuthorResolver(s.Users(), nil, 0), nil)

	c, err := svc.CreateComment(ctx, "author", &domain.CreateCommentRequest{PostID: post.ID, Content: "first"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	stored, err := s.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CommentsCount)

	comments, err := svc.ListPostComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestCommentService_FailureLogCarriesUserIDOnce(t *testing.T) {
	s := newStore(t)
	seedUser(t, s, "author")
	post := seedPost(t, s, "author", "hello", time.Now())

	var buf bytes.Buffer
	ctx := pkglog.WithLogger(context.Background(), pkglog.NewWithWriter(pkglog.Config{Level: "debug"}, &buf))
	ctx = pkglog.WithUserID(ctx, "author")

	svc := NewCommentService(brokenCounterStore{s}, NewAuthorResolver(s.Users(), nil, 0), nil)
	_, err := svc.CreateComment(ctx, "author", &domain.CreateCommentRequest{PostID: post.ID, Content: "first"})
	require.NoError(t, err)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if !strings.Contains(line, "failed to increment comments count") {
			continue
		}
		found = true
		assert.Equal(t, 1, strings.Count(line, `"user_id"`), line)
		assert.Equal(t, 1, strings.Count(line, `"post_id"`), line)
	}
	assert.True(t, found, buf.String())
}

func TestCommentService_Validation(t *testing.T) {
	s := newStore(t)
	seedUser(t, s, "author")
	svc := NewCommentService(s, NewAuthorResolver(s.Users(), nil, 0), nil)

	_, err := svc.CreateComment(context.Background(), "author", &domain.CreateCommentRequest{PostID: "p", Content: "   "})
	require.ErrorIs(t, err, ErrValidation)
	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Please fill in content", verrs.Fields()["content"])

	_, err = svc.CreateComment(context.Background(), "author", &domain.CreateCommentRequest{PostID: "p", Content: strings.Repeat("x", 1001)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCommentService_MissingCommenterIsNotFound(t *testing.T) {
	s := newStore(t)
	seedUser(t, s, "author")
	post := seedPost(t, s, "author", "hello", time.Now())
	svc := NewCommentService(s, NewAuthorResolver(s.Users(), nil, 0), nil)

	_, err := svc.CreateComment(context.Background(), "ghost", &domain.CreateCommentRequest{PostID: post.ID, Content: "boo"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentService_MissingPostStoresNothing(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "reader")
	svc := NewCommentService(s, NewAuthorResolver(s.Users(), nil, 0), nil)

	_, err := svc.CreateComment(ctx, "reader", &domain.CreateCommentRequest{PostID: "no-such-post", Content: "hello?"})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Comments().CountByPost(ctx, "no-such-post")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentService_ListNewestFirstWithoutOrphans(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "author")
	post := seedPost(t, s, "author", "hello", time.Now())

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []*domain.Comment{
		{PostID: post.ID, UserID: "author", Content: "old", Timestamp: base},
		{PostID: post.ID, UserID: "ghost", Content: "orphan", Timestamp: base.Add(time.Minute)},
		{PostID: post.ID, UserID: "author", Content: "new", Timestamp: base.Add(2 * time.Minute)},
	} {
		require.NoError(t, s.Comments().Create(ctx, c), i)
	}

	svc := NewCommentService(s, NewAuthorResolver(s.Users(), nil, 0), nil)
	comments, err := svc.ListPostComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "new", comments[0].Content)
	assert.Equal(t, "old", comments[1].Content)
}

func TestCommentService_NotifiesPostAuthor(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "author")
	seedUser(t, s, "reader")
	seedPushToken(t, s, "author")
	post := seedPost(t, s, "author", "hello", time.Now())

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Type == domain.NotificationPostCommented &&
			n.RecipientID == "author" &&
			n.PostID == post.ID &&
			n.Body == "User reader: great shot"
	})).Return(nil).Once()

	svc := NewCommentService(s, NewAuthorResolver(s.Users(), nil, 0), pub)
	_, err := svc.CreateComment(ctx, "reader", &domain.CreateCommentRequest{PostID: post.ID, Content: "great shot"})
	require.NoError(t, err)

	pub.AssertExpectations(t)
}
