package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	l := New(Config{})
	assert.Nil(t, l)
	assert.NoError(t, l.Wait(context.Background()))
}

func TestLimiter_Paces(t *testing.T) {
	l := New(Config{RPS: 50, Burst: 1})
	require.NotNil(t, l)

	started := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(started), 30*time.Millisecond)
}

func TestLimiter_Canceled(t *testing.T) {
	l := New(Config{RPS: 0.001, Burst: 1})
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx))
}
