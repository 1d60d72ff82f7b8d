package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/weiawesome/framez/internal/domain"
)

const bodyPreviewLen = 80

// Build creates the event for actor acting on recipient. It returns nil
// when nobody should be notified: the recipient is the actor or has not
// registered a push token.
func Build(typ string, actor *domain.Author, recipient *domain.UserProfile, at time.Time) *domain.Notification {
	if actor == nil || recipient == nil || actor.ID == recipient.ID {
		return nil
	}
	if recipient.PushToken == nil || *recipient.PushToken == "" {
		return nil
	}

	n := &domain.Notification{
		ID:          uuid.NewString(),
		Type:        typ,
		RecipientID: recipient.ID,
		PushToken:   *recipient.PushToken,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		CreatedAt:   at.UTC(),
	}
	switch typ {
	case domain.NotificationPostLiked:
		n.Title = "New like"
		n.Body = fmt.Sprintf("%s liked your post", actor.Name)
	case domain.NotificationPostCommented:
		n.Title = "New comment"
		n.Body = fmt.Sprintf("%s commented on your post", actor.Name)
	case domain.NotificationUserFollowed:
		n.Title = "New follower"
		n.Body = fmt.Sprintf("%s started following you", actor.Name)
	}
	return n
}

// Preview shortens comment text for a notification body.
func Preview(s string) string {
	r := []rune(s)
	if len(r) <= bodyPreviewLen {
		return s
	}
	return string(r[:bodyPreviewLen-1]) + "…"
}
