package dydx_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/adapters/dydx"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shRunner() *dydx.Runner {
	return dydx.NewRunner(dydx.RunnerConfig{Binary: "sh", RatePerSec: 1000, Burst: 100, Timeout: 5 * time.Second})
}

func TestRunner_Success(t *testing.T) {
	res, err := shRunner().Execute(context.Background(), domain.Command{Args: []string{"-c", "echo hello"}})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestRunner_Stdin(t *testing.T) {
	res, err := shRunner().Execute(context.Background(), domain.Command{
		Args:  []string{"-c", "cat"},
		Stdin: []byte("color habit donor\n"),
	})

	require.NoError(t, err)
	assert.Equal(t, "color habit donor\n", res.Stdout)
}

func TestRunner_NonZeroExit(t *testing.T) {
	res, err := shRunner().Execute(context.Background(), domain.Command{
		Args: []string{"-c", "echo oops >&2; exit 3"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCommandFailed)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, domain.KindCommandFailed, domain.KindOf(err))
}

func TestRunner_SpawnFailed(t *testing.T) {
	r := dydx.NewRunner(dydx.RunnerConfig{Binary: "/nonexistent/dydxprotocold"})
	_, err := r.Execute(context.Background(), domain.Command{Args: []string{"status"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSpawnFailed)
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
}

func TestRunner_Timeout(t *testing.T) {
	r := dydx.NewRunner(dydx.RunnerConfig{Binary: "sh", Timeout: 50 * time.Millisecond})
	_, err := r.Execute(context.Background(), domain.Command{Args: []string{"-c", "sleep 5"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := shRunner().Execute(ctx, domain.Command{Args: []string{"-c", "echo hi"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
