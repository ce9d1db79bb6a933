package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "k", "v")
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "msg=dbg", "k=v", "level=INFO", "level=WARN", "level=ERROR"} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_WithAddsFields(t *testing.T) {
	log, buf := newTestLogger(t)

	child := log.With("module", "sync")
	child.Info(context.Background(), "cycle done")

	lines := strings.TrimSpace(buf.String())
	assert.Contains(t, lines, "module=sync")
	assert.Contains(t, lines, "msg=\"cycle done\"")
}
