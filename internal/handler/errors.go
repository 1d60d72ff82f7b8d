package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/framez/internal/identity"
	"github.com/weiawesome/framez/internal/service"
	"github.com/weiawesome/framez/internal/validate"
	pkglog "github.com/weiawesome/framez/pkg/log"
	"github.com/weiawesome/framez/pkg/response"
)

// writeError maps a service error to a response. Unexpected errors are
// logged in full and answered with fallback only.
func writeError(c *gin.Context, err error, fallback string) {
	var ierr *identity.Error
	if errors.As(err, &ierr) {
		writeIdentityError(c, ierr)
		return
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			response.Validation(c, verrs.Error(), verrs.Fields())
			return
		}
		msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
		response.Validation(c, msg, nil)
	case errors.Is(err, service.ErrSelfFollow):
		response.BadRequest(c, "you cannot follow yourself")
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, service.ErrPermissionDenied):
		response.Forbidden(c, "permission denied")
	case errors.Is(err, service.ErrUnavailable):
		response.Unprocessable(c, "UNAVAILABLE", "Must use physical device for push notifications")
	default:
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Msg(fallback)
		_ = c.Error(err)
		response.InternalError(c, fallback)
	}
}

func writeIdentityError(c *gin.Context, err *identity.Error) {
	msg := err.Error()
	switch err.Code {
	case identity.CodeEmailAlreadyInUse:
		response.Conflict(c, msg)
	case identity.CodeWrongPassword, identity.CodeUserNotFound, identity.CodeInvalidCredential, identity.CodeUserDisabled:
		response.Unauthorized(c, msg)
	case identity.CodeInvalidEmail, identity.CodeWeakPassword:
		response.BadRequest(c, msg)
	case identity.CodeNetworkRequestFailed:
		response.ServiceUnavailable(c, msg)
	default:
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err.Err).Str("code", string(err.Code)).Msg("identity provider failure")
		response.InternalError(c, msg)
	}
}

// bindJSON decodes the body into obj, answering 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if verrs, ok := validate.Translate(err); ok {
			response.Validation(c, verrs.Error(), verrs.Fields())
			return false
		}
		l := pkglog.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("malformed request body")
		response.BadRequest(c, "malformed request body")
		return false
	}
	return true
}
