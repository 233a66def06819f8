package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPerUser_Allow(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	limiter := NewPerUser(2 * time.Second)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("42"), "first call is always allowed")
	assert.False(t, limiter.Allow("42"), "second call inside the window is denied")

	now = now.Add(1999 * time.Millisecond)
	assert.False(t, limiter.Allow("42"), "just under the interval is still denied")

	now = now.Add(1 * time.Millisecond)
	assert.True(t, limiter.Allow("42"), "exactly the interval is allowed again")
}

func TestPerUser_IndependentUsers(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	limiter := NewPerUser(2 * time.Second)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"), "limits are tracked per user")
	assert.False(t, limiter.Allow("a"))
}

func TestPerUser_DeniedCallDoesNotSlideWindow(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	limiter := NewPerUser(2 * time.Second)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("42"))

	// Отклонённые вызовы не двигают отметку: окно отсчитывается
	// от последнего допущенного вызова.
	now = now.Add(1 * time.Second)
	assert.False(t, limiter.Allow("42"))
	now = now.Add(1 * time.Second)
	assert.True(t, limiter.Allow("42"))
}
