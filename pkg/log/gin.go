package log

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// GinMiddleware attaches a request-scoped logger to the request context
// and logs every completed request. The request ID is taken from
// X-Request-ID when present and echoed back on the response.
func GinMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		child := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, c.FullPath()).
			Str(FieldClientIP, c.ClientIP()).
			Logger()

		c.Header(headerRequestID, reqID)
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), child))

		c.Next()

		var evt *zerolog.Event
		switch status := c.Writer.Status(); {
		case status >= 500:
			evt = child.Error()
		case status >= 400:
			evt = child.Warn()
		default:
			evt = child.Info()
		}
		evt = evt.
			Int(FieldStatus, c.Writer.Status()).
			Float64(FieldLatency, float64(time.Since(start).Milliseconds()))

		// Set by the auth middleware once the token is accepted.
		if userID := c.GetString(FieldUserID); userID != "" {
			evt = evt.Str(FieldUserID, userID)
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}

		evt.Msg("request completed")
	}
}
