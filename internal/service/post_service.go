package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/weiawesome/framez/internal/audit"
	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/repository"
	"github.com/weiawesome/framez/internal/store"
	"github.com/weiawesome/framez/internal/validate"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// postService implements PostService.
type postService struct {
	store   repository.Store
	authors *AuthorResolver
	assets  AssetService
	hotKeys store.HotKeyStore
	now     func() time.Time
}

// NewPostService creates a PostService. assets and hotKeys may be nil.
func NewPostService(st repository.Store, authors *AuthorResolver, assets AssetService, hotKeys store.HotKeyStore) PostService {
	if hotKeys == nil {
		hotKeys = store.NopHotKeyStore{}
	}
	return &postService{
		store:   st,
		authors: authors,
		assets:  assets,
		hotKeys: hotKeys,
		now:     time.Now,
	}
}

// CreatePost stores a post with no likes and zero counters and returns
// it with its author.
func (s *postService) CreatePost(ctx context.Context, userID string, req *domain.CreatePostRequest) (*domain.Post, error) {
	l := pkglog.Ctx(ctx)

	req.Content = strings.TrimSpace(req.Content)
	if req.ImageURL != nil && strings.TrimSpace(*req.ImageURL) == "" {
		req.ImageURL = nil
	}
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}

	post := &domain.Post{
		UserID:    userID,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		Timestamp: s.now().UTC(),
	}
	if err := s.store.Posts().Create(ctx, post); err != nil {
		l.Error().Err(err).Msg("failed to create post")
		return nil, writeFailed("create post", err)
	}

	created, err := s.getWithAuthor(ctx, post.ID)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldPostID, post.ID).Msg("failed to read back created post")
		return nil, ErrNotFound
	}
	return created, nil
}

// GetPost returns a post with its author. A post whose author is gone is
// reported as not found.
func (s *postService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	l := pkglog.Ctx(ctx)

	post, err := s.getWithAuthor(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) || errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		l.Error().Err(err).Str(pkglog.FieldPostID, postID).Msg("failed to get post")
		return nil, err
	}

	s.recordAccess(ctx, postID)
	return post, nil
}

// ListPosts returns every post, newest first.
func (s *postService) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.list(ctx, repository.ListPostsFilter{})
}

// ListUserPosts returns the posts of one user, newest first.
func (s *postService) ListUserPosts(ctx context.Context, userID string) ([]*domain.Post, error) {
	return s.list(ctx, repository.ListPostsFilter{UserID: userID})
}

func (s *postService) list(ctx context.Context, filter repository.ListPostsFilter) ([]*domain.Post, error) {
	l := pkglog.Ctx(ctx)

	posts, err := s.store.Posts().List(ctx, filter)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldTargetUserID, filter.UserID).Msg("failed to list posts")
		return nil, err
	}

	rows, err := s.authors.JoinPosts(ctx, posts)
	if err != nil {
		l.Error().Err(err).Msg("failed to resolve post authors")
		return nil, err
	}

	items := visible(ctx, "post", rows)
	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	s.recordAccess(ctx, ids...)
	return items, nil
}

// DeletePost removes a post and its comments in one transaction. Only the
// author may delete. The image is removed afterwards on a best-effort
// basis.
func (s *postService) DeletePost(ctx context.Context, actorID, postID string) error {
	l := pkglog.Ctx(ctx).With().Str(pkglog.FieldPostID, postID).Logger()

	var (
		imageURL *string
		removed  int64
	)
	err := s.store.Transaction(ctx, func(tx repository.Tx) error {
		post, err := tx.Posts().GetByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if post.UserID != actorID {
			return ErrPermissionDenied
		}

		if removed, err = tx.Comments().DeleteByPost(ctx, postID); err != nil {
			return err
		}
		if err := tx.Posts().Delete(ctx, postID); err != nil {
			return err
		}
		imageURL = post.ImageURL
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPostNotFound):
			return ErrNotFound
		case errors.Is(err, ErrPermissionDenied):
			return ErrPermissionDenied
		}
		l.Error().Err(err).Msg("failed to delete post")
		return writeFailed("delete post", err)
	}

	if imageURL != nil && s.assets != nil {
		if err := s.assets.DeleteImage(ctx, actorID, *imageURL); err != nil {
			l.Warn().Err(err).Str("image_url", *imageURL).Msg("failed to delete post image")
		}
	}

	audit.LogTarget(ctx, audit.ActionDeletePost, actorID, postID, "post deleted")
	l.Info().Int64("comments_deleted", removed).Msg("post deleted")
	return nil
}

func (s *postService) getWithAuthor(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.authors.Resolve(ctx, post.UserID)
	if err != nil {
		return nil, err
	}
	post.Author = author
	return post, nil
}

// recordAccess feeds the reconciler's hot-key window. Best-effort.
func (s *postService) recordAccess(ctx context.Context, postIDs ...string) {
	if err := s.hotKeys.RecordAccess(ctx, store.KindPost, postIDs...); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Int("count", len(postIDs)).Msg("failed to record hot key access")
	}
}
