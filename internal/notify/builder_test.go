package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/framez/internal/domain"
)

func TestBuild(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := "ExponentPushToken[abc]"
	actor := &domain.Author{ID: "u1", Name: "Alice"}
	recipient := &domain.UserProfile{ID: "u2", Name: "Bob", PushToken: &token}

	n := Build(domain.NotificationPostLiked, actor, recipient, at)
	require.NotNil(t, n)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "u2", n.RecipientID)
	assert.Equal(t, token, n.PushToken)
	assert.Equal(t, "u1", n.ActorID)
	assert.Equal(t, "Alice liked your post", n.Body)
	assert.Equal(t, at, n.CreatedAt)

	n = Build(domain.NotificationUserFollowed, actor, recipient, at)
	require.NotNil(t, n)
	assert.Equal(t, "New follower", n.Title)
}

func TestBuild_Skipped(t *testing.T) {
	token := "ExponentPushToken[abc]"
	actor := &domain.Author{ID: "u1", Name: "Alice"}

	assert.Nil(t, Build(domain.NotificationPostLiked, actor, &domain.UserProfile{ID: "u1", PushToken: &token}, time.Now()), "self")
	assert.Nil(t, Build(domain.NotificationPostLiked, actor, &domain.UserProfile{ID: "u2"}, time.Now()), "no token")
	assert.Nil(t, Build(domain.NotificationPostLiked, nil, &domain.UserProfile{ID: "u2", PushToken: &token}, time.Now()), "no actor")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))
	long := strings.Repeat("a", 200)
	p := Preview(long)
	assert.Equal(t, bodyPreviewLen, len([]rune(p)))
	assert.True(t, strings.HasSuffix(p, "…"))
}
