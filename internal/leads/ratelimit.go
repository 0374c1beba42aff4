package leads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a per-contact submission cooldown backed by redis.
// A nil limiter allows everything.
type RateLimiter struct {
	rdb    *redis.Client
	window time.Duration
}

// NewRateLimiter builds a limiter over the given cooldown window.
func NewRateLimiter(rdb *redis.Client, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, window: window}
}

// Allow reserves a submission slot for the contact. It returns a
// RATE_LIMITED error while a previous submission is still inside the
// window. Redis outages fail open: capture beats throttling.
func (l *RateLimiter) Allow(ctx context.Context, email string) error {
	if l == nil || l.rdb == nil || l.window <= 0 {
		return nil
	}

	key := cooldownKey(email)
	ok, err := l.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), l.window).Result()
	if err != nil {
		return nil
	}
	if !ok {
		return apperrors.NewRateLimitedError(
			fmt.Sprintf("cooldown window %s still active", l.window))
	}
	return nil
}

// cooldownKey hashes the email so contact addresses never land in redis
// keyspace dumps verbatim.
func cooldownKey(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "lead:cooldown:" + hex.EncodeToString(sum[:8])
}
