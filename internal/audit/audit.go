package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/weiawesome/framez/pkg/log"
)

const (
	ActionSignup        = "user.signup"
	ActionLogin         = "user.login"
	ActionLoginFailed   = "user.login_failed"
	ActionLogout        = "user.logout"
	ActionRefreshToken  = "user.refresh_token"
	ActionUpdateProfile = "user.update_profile"
	ActionPushRegister  = "user.push_register"
	ActionDeletePost    = "post.delete"
)

const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit entry through the request logger.
func Log(ctx context.Context, action, userID, msg string) {
	entry(ctx, action, userID).Msg(msg)
}

// LogTarget emits an audit entry about an action on another resource.
func LogTarget(ctx context.Context, action, userID, targetID, msg string) {
	entry(ctx, action, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit entry with a free-form detail.
func LogWithDetail(ctx context.Context, action, userID, detail, msg string) {
	entry(ctx, action, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}

// entry starts an audit event. user_id is added only when the request
// logger does not carry one yet.
func entry(ctx context.Context, action, userID string) *zerolog.Event {
	l := log.Ctx(ctx)
	evt := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action)
	if log.UserID(ctx) == "" {
		evt = evt.Str(log.FieldUserID, userID)
	}
	return evt
}
