package service

import (
	"context"
	"time"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/notify"
	"github.com/weiawesome/framez/internal/repository"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// notifier publishes activity notifications after a state change has
// been committed. Every failure is logged and dropped.
type notifier struct {
	pub     notify.Publisher
	users   repository.UserRepository
	authors *AuthorResolver
	now     func() time.Time
}

func newNotifier(pub notify.Publisher, users repository.UserRepository, authors *AuthorResolver) *notifier {
	if pub == nil {
		pub = notify.NopPublisher{}
	}
	return &notifier{pub: pub, users: users, authors: authors, now: time.Now}
}

func (n *notifier) send(ctx context.Context, typ, actorID, recipientID string, decorate func(*domain.Notification)) {
	if actorID == recipientID {
		return
	}
	l := pkglog.Ctx(ctx).With().
		Str("notification", typ).
		Str(pkglog.FieldTargetUserID, recipientID).
		Logger()

	recipient, err := n.users.GetByID(ctx, recipientID)
	if err != nil {
		l.Warn().Err(err).Msg("skipping notification: recipient lookup failed")
		return
	}
	actor, err := n.authors.Resolve(ctx, actorID)
	if err != nil {
		l.Warn().Err(err).Msg("skipping notification: actor lookup failed")
		return
	}

	msg := notify.Build(typ, actor, recipient, n.now())
	if msg == nil {
		return
	}
	if decorate != nil {
		decorate(msg)
	}
	if err := n.pub.Publish(ctx, msg); err != nil {
		l.Error().Err(err).Msg("failed to publish notification")
	}
}
