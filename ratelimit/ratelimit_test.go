package ratelimit

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(max int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(&RateLimiterConfig{MaxRequests: max, WindowSize: window, CleanupInterval: time.Hour})
	rl.now = clock.Now
	return rl, clock
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d should pass", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "keys are independent")

	clock.Advance(61 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.Equal(t, 1, rl.Count("10.0.0.1"))
}

func TestRateLimiter_ResetAndCleanup(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	rl.Reset("a")
	assert.True(t, rl.Allow("a"))

	clock.Advance(2 * time.Minute)
	rl.cleanup()
	rl.mu.Lock()
	_, exists := rl.requests["a"]
	rl.mu.Unlock()
	assert.False(t, exists)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(nil)
	rl.Stop()
	rl.Stop()
}

func TestClientIP_IgnoresForwardedFromUntrustedPeer(t *testing.T) {
	r := httptest.NewRequest("POST", "/users/login", nil)
	r.RemoteAddr = "192.168.1.5:5555"
	assert.Equal(t, "192.168.1.5", ClientIP(r, nil))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.168.1.5", ClientIP(r, nil))
}

func TestClientIP_TrustedProxy(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "127.0.0.1"})
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/users/login", nil)
	r.RemoteAddr = "10.1.2.3:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 203.0.113.9, 10.0.0.1")
	// right-most untrusted hop; a client can only prepend
	assert.Equal(t, "203.0.113.9", ClientIP(r, trusted))

	r.Header.Set("X-Forwarded-For", "10.0.0.2")
	assert.Equal(t, "10.1.2.3", ClientIP(r, trusted))

	r.Header.Set("X-Forwarded-For", "not-an-ip")
	assert.Equal(t, "10.1.2.3", ClientIP(r, trusted))

	r.RemoteAddr = "127.0.0.1:9000"
	r.Header.Set("X-Forwarded-For", "203.0.113.50")
	assert.Equal(t, "203.0.113.50", ClientIP(r, trusted))
}

func TestParseTrustedProxies(t *testing.T) {
	nets, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, nets, 2)

	_, err = ParseTrustedProxies([]string{"10.0.0.300"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"10.0.0.0/40"})
	assert.Error(t, err)
}

func TestRateLimiter_ClientIPUsesConfiguredProxies(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	rl := NewRateLimiter(&RateLimiterConfig{MaxRequests: 1, WindowSize: time.Minute, TrustedProxies: trusted})
	defer rl.Stop()

	r := httptest.NewRequest("POST", "/users/login", nil)
	r.RemoteAddr = "10.0.0.1:80"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", rl.ClientIP(r))
}
