package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/config"
)

func TestWindowFor(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 30, 0, time.UTC)

	w := WindowFor("vote:7", now, 2*time.Minute)
	assert.Equal(t, 90*time.Second, w.RetryAfter)
	assert.Contains(t, w.Key, "ratelimit:vote:7:")

	same := WindowFor("vote:7", now.Add(80*time.Second), 2*time.Minute)
	assert.Equal(t, w.Key, same.Key)

	next := WindowFor("vote:7", now.Add(90*time.Second), 2*time.Minute)
	assert.NotEqual(t, w.Key, next.Key)
	assert.Equal(t, 2*time.Minute, next.RetryAfter)
}

func TestWindowFor_SubSecondWindow(t *testing.T) {
	w := WindowFor("auth:1.2.3.4", time.Unix(100, 0), time.Millisecond)
	assert.Equal(t, time.Second, w.RetryAfter)
}

func TestDisabledClientIsInert(t *testing.T) {
	require.NoError(t, Init(&config.RedisConfig{Enabled: false}))
	assert.False(t, Enabled())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, retry, err := Allow(ctx, "vote:1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, retry)
	}

	require.NoError(t, BlacklistToken(ctx, "token", time.Hour))
	revoked, err := IsTokenBlacklisted(ctx, "token")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, Close())
}
