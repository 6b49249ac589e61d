package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb), mr
}

func TestCheckAdmitsUpToMax(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	cfg := Config{Window: time.Minute, Max: 3}

	for i := 0; i < 3; i++ {
		admitted, err := limiter.Check(ctx, "photo:u1", cfg)
		require.NoError(t, err)
		assert.True(t, admitted, "attempt %d should be admitted", i+1)
	}

	admitted, err := limiter.Check(ctx, "photo:u1", cfg)
	require.NoError(t, err)
	assert.False(t, admitted, "attempt over the max is rejected, not an error")
}

func TestCheckBurstInSameMillisecond(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	cfg := Config{Window: time.Minute, Max: 5}

	// Back-to-back attempts can land on the same millisecond; each one must
	// still count individually.
	admittedCount := 0
	for i := 0; i < 6; i++ {
		admitted, err := limiter.Check(ctx, "photo:burst", cfg)
		require.NoError(t, err)
		if admitted {
			admittedCount++
		}
	}
	assert.Equal(t, 5, admittedCount)
}

func TestCheckRejectedAttemptsStillCount(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	cfg := Config{Window: 400 * time.Millisecond, Max: 1}

	admitted, err := limiter.Check(ctx, "cmd:u1", cfg)
	require.NoError(t, err)
	require.True(t, admitted)

	time.Sleep(200 * time.Millisecond)
	admitted, err = limiter.Check(ctx, "cmd:u1", cfg)
	require.NoError(t, err)
	require.False(t, admitted)

	// The admitted attempt has aged out by now, but the rejected one has not.
	// If rejections did not count, this check would be admitted.
	time.Sleep(300 * time.Millisecond)
	admitted, err = limiter.Check(ctx, "cmd:u1", cfg)
	require.NoError(t, err)
	assert.False(t, admitted)
}

func TestCheckReadmitsAfterWindow(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	cfg := Config{Window: 200 * time.Millisecond, Max: 2}

	for i := 0; i < 3; i++ {
		_, err := limiter.Check(ctx, "cmd:u2", cfg)
		require.NoError(t, err)
	}

	time.Sleep(250 * time.Millisecond)
	admitted, err := limiter.Check(ctx, "cmd:u2", cfg)
	require.NoError(t, err)
	assert.True(t, admitted, "old attempts age out of the window")
}

func TestCheckKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	cfg := Config{Window: time.Minute, Max: 1}

	admitted, err := limiter.Check(ctx, "photo:a", cfg)
	require.NoError(t, err)
	require.True(t, admitted)

	admitted, err = limiter.Check(ctx, "photo:a", cfg)
	require.NoError(t, err)
	require.False(t, admitted)

	// A different user, and a different operation class for the same user,
	// each get their own window.
	admitted, err = limiter.Check(ctx, "photo:b", cfg)
	require.NoError(t, err)
	assert.True(t, admitted)

	admitted, err = limiter.Check(ctx, "cmd:a", cfg)
	require.NoError(t, err)
	assert.True(t, admitted)
}

func TestCheckFailsClosedOnOutage(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	mr.Close()

	admitted, err := limiter.Check(context.Background(), "photo:u1", Config{Window: time.Minute, Max: 5})
	assert.Error(t, err)
	assert.False(t, admitted)
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "photo:123", PhotoKey("123"))
	assert.Equal(t, "cmd:123", CommandKey("123"))
}
