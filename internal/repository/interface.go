package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/pkg/database"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrEmailExists     = errors.New("email already exists")
)

// UserRepository persists profile documents.
type UserRepository interface {
	Create(ctx context.Context, user *domain.UserProfile) error
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, id string, req *domain.UpdateProfileRequest) error
	UpdatePushToken(ctx context.Context, id, token string) error
	SaveFollowers(ctx context.Context, id string, followers database.StringArray, count int) error
	SaveFollowing(ctx context.Context, id string, following database.StringArray, count int) error
}

// ListPostsFilter narrows a post listing. Zero values mean no filter.
type ListPostsFilter struct {
	UserID string
	Limit  int
}

// PostRepository persists post documents.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Post, error)
	// List returns posts newest-first, ties broken by id descending.
	List(ctx context.Context, filter ListPostsFilter) ([]*domain.Post, error)
	SaveLikes(ctx context.Context, id string, likes database.StringArray, count int) error
	// IncrementCommentsCount adds delta in a single UPDATE.
	IncrementCommentsCount(ctx context.Context, id string, delta int) error
	SetCommentsCount(ctx context.Context, id string, count int) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository persists comment documents.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	// ListByPost returns comments newest-first, ties broken by id descending.
	ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}

// Tx exposes the repositories bound to one database transaction, or to
// the plain connection outside of one.
type Tx interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
}

// Store is the document store. Transaction commits when fn returns nil
// and rolls back otherwise.
type Store interface {
	Tx
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}
