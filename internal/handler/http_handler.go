package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/framez/internal/service"
	"github.com/weiawesome/framez/pkg/middleware"
	"github.com/weiawesome/framez/pkg/response"
)

// Services bundles the business services the API exposes.
type Services struct {
	Auth     service.AuthService
	Profiles service.ProfileService
	Posts    service.PostService
	Comments service.CommentService
	Likes    service.LikeService
	Follows  service.FollowService
	Assets   service.AssetService
	Push     service.PushService
}

// Handler handles HTTP requests for the Framez API.
type Handler struct {
	svc            Services
	authMiddleware *middleware.AuthMiddleware
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler. maxUploadBytes caps multipart
// request bodies.
func NewHandler(svc Services, authMiddleware *middleware.AuthMiddleware, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		svc:            svc,
		authMiddleware: authMiddleware,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	requireAuth := h.authMiddleware.RequireAuth()

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Signup)
			auth.POST("/login", h.Login)
			auth.POST("/refresh", h.Refresh)
			auth.POST("/logout", requireAuth, h.Logout)
		}

		users := api.Group("/users")
		{
			users.GET("/me", requireAuth, h.GetMe)
			users.PUT("/me", requireAuth, h.UpdateMe)
			users.GET("/me/auth-state", requireAuth, h.AuthState)
			users.POST("/me/avatar", requireAuth, h.UploadAvatar)
			users.POST("/me/push-token", requireAuth, h.RegisterPush)

			users.GET("/:user_id", h.GetUser)
			users.GET("/:user_id/posts", h.ListUserPosts)
			users.POST("/:user_id/follow", requireAuth, h.Follow)
			users.DELETE("/:user_id/follow", requireAuth, h.Unfollow)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", h.ListPosts)
			posts.POST("", requireAuth, h.CreatePost)
			posts.GET("/:post_id", h.GetPost)
			posts.DELETE("/:post_id", requireAuth, h.DeletePost)
			posts.POST("/:post_id/like", requireAuth, h.Like)
			posts.DELETE("/:post_id/like", requireAuth, h.Unlike)
			posts.GET("/:post_id/comments", h.ListComments)
			posts.POST("/:post_id/comments", requireAuth, h.CreateComment)
		}
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// currentUser returns the authenticated caller, answering 401 when absent.
func currentUser(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return "", false
	}
	return userID, true
}
