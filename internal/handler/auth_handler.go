package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/framez/internal/domain"
	pkglog "github.com/weiawesome/framez/pkg/log"
	"github.com/weiawesome/framez/pkg/response"
)

// Signup handles POST /api/v1/auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Auth.Signup(ctx, &req)
	if err != nil {
		writeError(c, err, "failed to sign up")
		return
	}

	response.Created(c, resp)
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Auth.Login(ctx, &req)
	if err != nil {
		writeError(c, err, "failed to log in")
		return
	}

	response.Success(c, resp)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Auth.Refresh(ctx, &req)
	if err != nil {
		writeError(c, err, "failed to refresh token")
		return
	}

	response.Success(c, resp)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Auth.Logout(ctx, userID); err != nil {
		writeError(c, err, "failed to log out")
		return
	}

	response.NoContent(c)
}

// AuthState handles GET /api/v1/users/me/auth-state. It streams the
// caller's sign-in state as server-sent events and ends after sign-out,
// since the caller's token is no longer valid.
func (h *Handler) AuthState(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	states, err := h.svc.Auth.OnAuthStateChanged(ctx, userID)
	if err != nil {
		writeError(c, err, "failed to observe auth state")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			c.SSEvent("auth_state", st)
			c.Writer.Flush()
			if !st.SignedIn {
				l.Debug().Msg("auth state stream ended by sign-out")
				return
			}
		}
	}
}
