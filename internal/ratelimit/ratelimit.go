// Package ratelimit implements sliding-window admission control over Redis
// sorted sets. Each key holds the admission timestamps seen in the trailing
// window; a check both records the attempt and judges it, so rejected calls
// still count toward the window.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Config bounds one operation class: at most Max admissions per trailing Window.
type Config struct {
	Window time.Duration
	Max    int64
}

// Operation-class configs shared by the bot and the API.
var (
	PhotoUpload = Config{Window: 60 * time.Second, Max: 5}
	Command     = Config{Window: 10 * time.Second, Max: 3}
	APIRequest  = Config{Window: 60 * time.Second, Max: 60}
)

// Limiter is a sliding-log rate limiter backed by a shared Redis instance.
type Limiter struct {
	rdb *redis.Client
}

// New creates a Limiter on top of an already-connected Redis client.
func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

// Check records an attempt under key and reports whether it is admitted.
// The trim, append, cardinality read and expiry refresh run in one pipeline
// against a single key, so concurrent bursts cannot undercount.
//
// A non-nil error means the counter store was unreachable, which is a
// distinct condition from "over limit": this limiter fails closed and the
// caller must surface it as a system-unavailable error.
func (l *Limiter) Check(ctx context.Context, key string, cfg Config) (bool, error) {
	now := time.Now().UnixMilli()
	windowStart := now - cfg.Window.Milliseconds()

	// Member carries a uuid suffix so same-millisecond attempts are not
	// collapsed by the sorted set.
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, &redis.Z{Score: float64(now), Member: member})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, cfg.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: counter store unavailable: %w", err)
	}

	return card.Val() <= cfg.Max, nil
}

// PhotoKey returns the window key for a user's media uploads.
func PhotoKey(discordID string) string {
	return "photo:" + discordID
}

// CommandKey returns the window key for a user's command-class operations.
func CommandKey(discordID string) string {
	return "cmd:" + discordID
}
