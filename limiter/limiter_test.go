package limiter_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/backlog/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffPersists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "igdb-next-req")
	lim := limiter.New(file, 0)

	wait, err := lim.Backoff("30")
	require.NoError(t, err)
	assert.Equal(t, 31*time.Second, wait)
	_, err = os.Stat(file)
	require.NoError(t, err)

	restarted := limiter.New(file, 0)
	require.NoError(t, restarted.Load())
	assert.WithinDuration(t, lim.NextAt(), restarted.NextAt(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, restarted.Wait(ctx), context.Canceled)
}

func TestBackoffDefault(t *testing.T) {
	lim := limiter.New("", 0)
	wait, err := lim.Backoff("")
	require.NoError(t, err)
	assert.Equal(t, limiter.DefaultBackoff, wait)

	_, err = lim.Backoff("soon")
	assert.Error(t, err)
}

func TestDelayNeverShortensBackoff(t *testing.T) {
	lim := limiter.New("", 10*time.Millisecond)
	_, err := lim.Backoff("5")
	require.NoError(t, err)
	before := lim.NextAt()
	lim.Delay()
	assert.Equal(t, before, lim.NextAt())
}

func TestWaitAfterDelay(t *testing.T) {
	lim := limiter.New(filepath.Join(t.TempDir(), "state"), 20*time.Millisecond)
	require.NoError(t, lim.Load())
	lim.Delay()

	start := time.Now()
	require.NoError(t, lim.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
