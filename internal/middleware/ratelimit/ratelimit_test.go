package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(rl *RateLimiter) *fiber.App {
	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestMiddleware_LimitsPerUser(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 2})
	t.Cleanup(rl.Stop)
	app := newApp(rl)

	do := func(user string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-User-ID", user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, 200, do("alice"))
	assert.Equal(t, 200, do("alice"))
	assert.Equal(t, fiber.StatusTooManyRequests, do("alice"))
	assert.Equal(t, 200, do("bob"))
}

func TestAllow_Refills(t *testing.T) {
	now := time.Now()
	rl := New(Config{MaxRequestsPerMinute: 60})
	t.Cleanup(rl.Stop)
	rl.now = func() time.Time { return now }

	for i := 0; i < 60; i++ {
		require.True(t, rl.allow("k"))
	}
	assert.False(t, rl.allow("k"))

	now = now.Add(2 * time.Second)
	assert.True(t, rl.allow("k"))
	assert.True(t, rl.allow("k"))
	assert.False(t, rl.allow("k"))
}

func TestEvictIdle(t *testing.T) {
	now := time.Now()
	rl := New(Config{})
	t.Cleanup(rl.Stop)
	rl.now = func() time.Time { return now }

	rl.allow("old")
	now = now.Add(time.Hour)
	rl.allow("fresh")
	rl.evictIdle(10 * time.Minute)

	assert.NotContains(t, rl.buckets, "old")
	assert.Contains(t, rl.buckets, "fresh")
}

func TestStopIsIdempotent(t *testing.T) {
	rl := New(Config{})
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}
