package log

import (
	"context"

	"github.com/rs/zerolog"
)

type (
	ctxKey    struct{}
	userIDKey struct{}
)

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Ctx returns the logger stored in ctx, or the global logger.
func Ctx(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}

// FromContext reports the logger stored in ctx, if any.
func FromContext(ctx context.Context) (zerolog.Logger, bool) {
	if ctx == nil {
		return zerolog.Logger{}, false
	}
	l, ok := ctx.Value(ctxKey{}).(zerolog.Logger)
	return l, ok
}

// WithUserID tags the context's logger with userID and remembers it, so
// later log sites can tell the field is already present.
func WithUserID(ctx context.Context, userID string) context.Context {
	l := Ctx(ctx).With().Str(FieldUserID, userID).Logger()
	return context.WithValue(WithLogger(ctx, l), userIDKey{}, userID)
}

// UserID returns the id set by WithUserID, or "".
func UserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
