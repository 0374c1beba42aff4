package leads

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(t *testing.T, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRateLimiter(rdb, window), mr
}

func TestRateLimiter_BlocksInsideWindow(t *testing.T) {
	limiter, _ := testLimiter(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "pat@acme.test"))

	err := limiter.Allow(ctx, "pat@acme.test")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRateLimited))

	// Different contact, different slot.
	assert.NoError(t, limiter.Allow(ctx, "sam@acme.test"))
}

func TestRateLimiter_AllowsAfterWindow(t *testing.T) {
	limiter, mr := testLimiter(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "pat@acme.test"))
	mr.FastForward(61 * time.Second)
	assert.NoError(t, limiter.Allow(ctx, "pat@acme.test"))
}

func TestRateLimiter_NormalizesEmail(t *testing.T) {
	limiter, _ := testLimiter(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "Pat@Acme.Test"))
	err := limiter.Allow(ctx, "  pat@acme.test ")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRateLimited))
}

func TestRateLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	limiter, mr := testLimiter(t, time.Minute)
	mr.Close()

	assert.NoError(t, limiter.Allow(context.Background(), "pat@acme.test"))
}

func TestRateLimiter_NilLimiterAllows(t *testing.T) {
	var limiter *RateLimiter
	assert.NoError(t, limiter.Allow(context.Background(), "pat@acme.test"))
}
