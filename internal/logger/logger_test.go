package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sbpzip/pkg/logging"
)

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		log, err := New(level, "json")
		require.NoError(t, err, level)
		assert.NotNil(t, log)
	}
}

func TestInfowCtx_AddsContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	ctx := logging.WithRunID(context.Background(), "abc")
	ctx = logging.WithSide(ctx, "base")
	log.InfowCtx(ctx, "pulled message", "msg_type", 74)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["run_id"])
	assert.Equal(t, "base", fields["side"])
	assert.EqualValues(t, 74, fields["msg_type"])
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	log.InfowCtx(context.Background(), "ignored")
	assert.NoError(t, log.Sync())
}
