package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketDrainsAndRefills(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	current := time.Now()
	tb.now = func() time.Time { return current }
	tb.lastRefill = current

	assert.True(t, tb.TakeToken())
	assert.True(t, tb.TakeToken())
	assert.False(t, tb.TakeToken())

	current = current.Add(1500 * time.Millisecond)
	assert.True(t, tb.TakeToken())
	assert.False(t, tb.TakeToken())
}

func TestWaitHonoursContext(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	tb.now = func() time.Time { return tb.lastRefill }
	assert.True(t, tb.TakeToken())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNonPositiveArgumentsAreClamped(t *testing.T) {
	tb := NewTokenBucket(0, -3)
	assert.Equal(t, int64(1), tb.capacity)
	assert.Equal(t, int64(1), tb.refillRate)
}
