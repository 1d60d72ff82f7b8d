package domain

import "time"

// Notification event types.
const (
	NotificationPostLiked     = "post.liked"
	NotificationPostCommented = "post.commented"
	NotificationUserFollowed  = "user.followed"
)

// Notification is published for an external push delivery worker.
type Notification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	RecipientID string    `json:"recipient_id"`
	PushToken   string    `json:"push_token"`
	ActorID     string    `json:"actor_id"`
	ActorName   string    `json:"actor_name"`
	PostID      string    `json:"post_id,omitempty"`
	CommentID   string    `json:"comment_id,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// PushRegistrationRequest describes the reporting device and the token it
// obtained, if any.
type PushRegistrationRequest struct {
	PhysicalDevice    bool   `json:"physical_device"`
	PermissionGranted bool   `json:"permission_granted"`
	Token             string `json:"token"`
	Platform          string `json:"platform" binding:"omitempty,oneof=ios android web"`
}

// PushRegistrationResponse carries the registered token, empty when the
// user declined notifications.
type PushRegistrationResponse struct {
	Token      string `json:"token,omitempty"`
	Registered bool   `json:"registered"`
}
