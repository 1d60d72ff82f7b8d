package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/framez/pkg/jwt"
	pkglog "github.com/weiawesome/framez/pkg/log"
	"github.com/weiawesome/framez/pkg/response"
)

const (
	UserIDKey     = pkglog.FieldUserID
	EmailKey      = pkglog.FieldEmail
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator checks an access token and returns its claims.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware authenticates requests with bearer tokens.
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth rejects requests without a valid access token and stores
// the caller's identity on the gin context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := m.validator.ValidateAccessToken(token)
		if err != nil {
			msg := "invalid token"
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				msg = "token has expired"
			case errors.Is(err, jwt.ErrRevokedToken):
				msg = "token has been revoked"
			}
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)

		c.Request = c.Request.WithContext(pkglog.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	token, ok := strings.CutPrefix(header, BearerPrefix)
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// GetUserID returns the authenticated user ID, or "".
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetEmail returns the authenticated email, or "".
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}
