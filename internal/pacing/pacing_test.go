package pacing_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/pacing"
	"github.com/stretchr/testify/assert"
)

func TestWait_ZeroReturnsImmediately(t *testing.T) {
	start := time.Now()
	assert.NoError(t, pacing.Wait(context.Background(), 0, "test"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWait_Sleeps(t *testing.T) {
	start := time.Now()
	assert.NoError(t, pacing.Wait(context.Background(), 20*time.Millisecond, "test"))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWait_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := pacing.Wait(ctx, time.Hour, "test")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDefaultPolicy(t *testing.T) {
	p := pacing.DefaultPolicy()
	assert.Equal(t, 3*time.Second, p.SettleWindow)
	assert.Equal(t, 2*time.Second, p.SubmitPacing)
	assert.Equal(t, 60*time.Second, p.BetweenCycles)
	assert.Equal(t, 30*time.Second, p.ErrorBackoff)
}
