package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/service"
	pkglog "github.com/weiawesome/framez/pkg/log"
	"github.com/weiawesome/framez/pkg/response"
)

// GetMe handles GET /api/v1/users/me.
func (h *Handler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.svc.Auth.CurrentUser(ctx, userID)
	if err != nil {
		writeError(c, err, "failed to get current user")
		return
	}

	response.Success(c, user)
}

// UpdateMe handles PUT /api/v1/users/me.
func (h *Handler) UpdateMe(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Profiles.UpdateProfile(ctx, userID, &req)
	if err != nil {
		writeError(c, err, "failed to update profile")
		return
	}

	response.Success(c, user)
}

// UploadAvatar handles POST /api/v1/users/me/avatar. The image arrives as
// the multipart field "avatar"; the previous avatar is removed once the
// profile points at the new one.
func (h *Handler) UploadAvatar(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	current, err := h.svc.Profiles.GetUser(ctx, userID)
	if err != nil {
		writeError(c, err, "failed to get current user")
		return
	}

	url, ok := h.uploadFormImage(c, userID, "avatar", service.AssetAvatar, true)
	if !ok {
		return
	}

	user, err := h.svc.Profiles.UpdateProfile(ctx, userID, &domain.UpdateProfileRequest{Avatar: &url})
	if err != nil {
		h.discardImage(c, userID, url)
		writeError(c, err, "failed to update avatar")
		return
	}

	if current.Avatar != nil && *current.Avatar != "" && *current.Avatar != url {
		if err := h.svc.Assets.DeleteImage(ctx, userID, *current.Avatar); err != nil {
			l.Warn().Err(err).Msg("failed to delete previous avatar")
		}
	}

	response.Success(c, user)
}

// RegisterPush handles POST /api/v1/users/me/push-token.
func (h *Handler) RegisterPush(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.PushRegistrationRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Push.Register(ctx, userID, &req)
	if err != nil {
		writeError(c, err, "failed to register for push notifications")
		return
	}

	response.Success(c, resp)
}

// GetUser handles GET /api/v1/users/:user_id.
func (h *Handler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("user_id")

	user, err := h.svc.Profiles.GetUser(ctx, userID)
	if err != nil {
		writeError(c, err, "failed to get user")
		return
	}

	response.Success(c, user)
}

// ListUserPosts handles GET /api/v1/users/:user_id/posts.
func (h *Handler) ListUserPosts(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("user_id")

	posts, err := h.svc.Posts.ListUserPosts(ctx, userID)
	if err != nil {
		writeError(c, err, "failed to list posts")
		return
	}

	response.Success(c, posts)
}

// Follow handles POST /api/v1/users/:user_id/follow.
func (h *Handler) Follow(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Follows.Follow(ctx, userID, c.Param("user_id")); err != nil {
		writeError(c, err, "failed to follow user")
		return
	}

	response.NoContent(c)
}

// Unfollow handles DELETE /api/v1/users/:user_id/follow.
func (h *Handler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Follows.Unfollow(ctx, userID, c.Param("user_id")); err != nil {
		writeError(c, err, "failed to unfollow user")
		return
	}

	response.NoContent(c)
}
