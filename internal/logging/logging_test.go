package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNopIsSilent(t *testing.T) {
	l := Nop()
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.False(t, l.Enabled(context.Background(), level), "level %v", level)
	}

	_, ok := l.Handler().WithAttrs([]slog.Attr{slog.String("key", "val")}).(nopHandler)
	assert.True(t, ok)
	_, ok = l.Handler().WithGroup("group").(nopHandler)
	assert.True(t, ok)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	OrNop(l).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
