package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/notify"
	"github.com/weiawesome/framez/internal/repository"
	"github.com/weiawesome/framez/internal/validate"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// commentService implements CommentService.
type commentService struct {
	store    repository.Store
	authors  *AuthorResolver
	notifier *notifier
	now      func() time.Time
}

// NewCommentService creates a CommentService. pub may be nil.
func NewCommentService(store repository.Store, authors *AuthorResolver, pub notify.Publisher) CommentService {
	return &commentService{
		store:    store,
		authors:  authors,
		notifier: newNotifier(pub, store.Users(), authors),
		now:      time.Now,
	}
}

// CreateComment stores the comment while holding the post's row lock, so
// it cannot land on a post being deleted, then bumps the post's comment
// count. A failed bump is logged and the comment still counts as created.
func (s *commentService) CreateComment(ctx context.Context, userID string, req *domain.CreateCommentRequest) (*domain.Comment, error) {
	l := pkglog.Ctx(ctx).With().Str(pkglog.FieldPostID, req.PostID).Logger()

	req.Content = strings.TrimSpace(req.Content)
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}

	comment := &domain.Comment{
		PostID:    req.PostID,
		UserID:    userID,
		Content:   req.Content,
		Timestamp: s.now().UTC(),
	}
	var postAuthorID string
	err := s.store.Transaction(ctx, func(tx repository.Tx) error {
		post, err := tx.Posts().GetByIDForUpdate(ctx, req.PostID)
		if err != nil {
			return err
		}
		postAuthorID = post.UserID
		return tx.Comments().Create(ctx, comment)
	})
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		l.Error().Err(err).Msg("failed to create comment")
		return nil, writeFailed("create comment", err)
	}

	if err := s.store.Posts().IncrementCommentsCount(ctx, req.PostID, 1); err != nil {
		l.Error().Err(err).Str(pkglog.FieldCommentID, comment.ID).Msg("failed to increment comments count")
	}

	created, err := s.getWithAuthor(ctx, comment.ID)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldCommentID, comment.ID).Msg("failed to read back created comment")
		return nil, ErrNotFound
	}

	s.notifier.send(ctx, domain.NotificationPostCommented, userID, postAuthorID, func(n *domain.Notification) {
		n.PostID = req.PostID
		n.CommentID = created.ID
		n.Body = created.Author.Name + ": " + notify.Preview(created.Content)
	})

	return created, nil
}

func (s *commentService) getWithAuthor(ctx context.Context, commentID string) (*domain.Comment, error) {
	comment, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	author, err := s.authors.Resolve(ctx, comment.UserID)
	if err != nil {
		return nil, err
	}
	comment.Author = author
	return comment, nil
}

// ListPostComments returns the comments of a post, newest first. Comments
// whose author is gone are left out.
func (s *commentService) ListPostComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	l := pkglog.Ctx(ctx)

	comments, err := s.store.Comments().ListByPost(ctx, postID)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldPostID, postID).Msg("failed to list comments")
		return nil, err
	}

	rows, err := s.authors.JoinComments(ctx, comments)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldPostID, postID).Msg("failed to resolve comment authors")
		return nil, err
	}
	return visible(ctx, "comment", rows), nil
}
