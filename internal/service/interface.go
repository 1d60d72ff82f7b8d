package service

import (
	"context"
	"io"

	"github.com/weiawesome/framez/internal/domain"
)

// LikeService toggles post likes.
type LikeService interface {
	Like(ctx context.Context, userID, postID string) (*domain.Post, error)
	Unlike(ctx context.Context, userID, postID string) (*domain.Post, error)
}

// FollowService toggles follow edges between users.
type FollowService interface {
	Follow(ctx context.Context, currentUserID, targetUserID string) error
	Unfollow(ctx context.Context, currentUserID, targetUserID string) error
}

// CommentService creates and lists comments.
type CommentService interface {
	CreateComment(ctx context.Context, userID string, req *domain.CreateCommentRequest) (*domain.Comment, error)
	ListPostComments(ctx context.Context, postID string) ([]*domain.Comment, error)
}

// PostService manages posts and their feeds.
type PostService interface {
	CreatePost(ctx context.Context, userID string, req *domain.CreatePostRequest) (*domain.Post, error)
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	ListPosts(ctx context.Context) ([]*domain.Post, error)
	ListUserPosts(ctx context.Context, userID string) ([]*domain.Post, error)
	DeletePost(ctx context.Context, actorID, postID string) error
}

// AuthService signs users up, in and out.
type AuthService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	Refresh(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context, userID string) (*domain.UserProfile, error)
	// OnAuthStateChanged first reports the current state, then every
	// transition until ctx ends.
	OnAuthStateChanged(ctx context.Context, userID string) (<-chan domain.AuthState, error)
}

// ProfileService reads and edits profiles.
type ProfileService interface {
	GetUser(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.UserProfile, error)
	// UpdatePushToken never fails; errors are logged.
	UpdatePushToken(ctx context.Context, userID, token string)
}

// AssetKind selects the storage prefix and compression preset.
type AssetKind string

const (
	AssetPost   AssetKind = "posts"
	AssetAvatar AssetKind = "avatars"
)

// AssetService uploads and deletes images. DeleteImage only removes
// objects stored under ownerID's folders.
type AssetService interface {
	UploadImage(ctx context.Context, userID string, r io.Reader, kind AssetKind) (string, error)
	DeleteImage(ctx context.Context, ownerID, url string) error
}

// PushService registers devices for push notifications.
type PushService interface {
	Register(ctx context.Context, userID string, req *domain.PushRegistrationRequest) (*domain.PushRegistrationResponse, error)
}

// CounterService recomputes denormalized counters of one document from
// its sets. The bool reports whether anything was rewritten.
type CounterService interface {
	RepairPost(ctx context.Context, postID string) (bool, error)
	RepairUser(ctx context.Context, userID string) (bool, error)
}

// HasLiked reports whether userID is in the post's like set.
func HasLiked(post *domain.Post, userID string) bool {
	return post.Likes.Contains(userID)
}

// IsFollowing reports whether user follows targetUserID.
func IsFollowing(user *domain.UserProfile, targetUserID string) bool {
	return user.Following.Contains(targetUserID)
}
