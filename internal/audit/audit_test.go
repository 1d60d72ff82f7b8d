package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/framez/pkg/log"
)

func captured(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := log.NewWithWriter(log.Config{Level: "debug"}, &buf)
	return log.WithLogger(context.Background(), l), &buf
}

func TestLog_AddsUserIDOnce(t *testing.T) {
	tests := []struct {
		name   string
		tagged string
	}{
		{"anonymous request", ""},
		{"authenticated request", "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, buf := captured(t)
			if tt.tagged != "" {
				ctx = log.WithUserID(ctx, tt.tagged)
			}

			LogTarget(ctx, ActionDeletePost, "u1", "p1", "post deleted")

			line := strings.TrimSpace(buf.String())
			assert.Equal(t, 1, strings.Count(line, `"user_id"`), line)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			assert.Equal(t, "u1", entry[log.FieldUserID])
			assert.Equal(t, ActionDeletePost, entry[FieldAction])
			assert.Equal(t, "p1", entry[FieldTargetID])
		})
	}
}
