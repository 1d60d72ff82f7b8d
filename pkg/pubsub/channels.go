package pubsub

import "fmt"

const channelAuthState = "auth:user:%s"

// Auth state event types.
const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
)

// AuthStateChannel is the channel sign-in and sign-out transitions for a
// user are published on.
func AuthStateChannel(userID string) string {
	return fmt.Sprintf(channelAuthState, userID)
}

// AuthStatePayload accompanies auth state events.
type AuthStatePayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}
