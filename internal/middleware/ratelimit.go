package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
)

// RateLimitConfig defines the limit for a specific route or group.
type RateLimitConfig struct {
	Max    int                      // Maximum requests allowed in the window
	Window time.Duration            // Time window for the limit
	KeyFn  func(c fiber.Ctx) string // Returns the key to rate limit on
}

// window tracks request count for one key until it expires.
type window struct {
	count int
	end   time.Time
}

// RateLimiter is an in-memory fixed-window rate limiter.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	config  RateLimitConfig
	stopCh  chan struct{}
	once    sync.Once
}

// NewRateLimiter creates a rate limiter with the given config and starts a
// janitor that drops expired windows until Close is called.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// hit counts one request against key and returns how many remain (negative
// once the limit is exceeded) and when the window resets.
func (rl *RateLimiter) hit(key string) (int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(rl.config.Window)}
		rl.windows[key] = w
	}
	w.count++
	return rl.config.Max - w.count, w.end
}

// Handler returns a Fiber middleware handler that enforces the rate limit.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		remaining, resetAt := rl.hit(rl.config.KeyFn(c))

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if remaining < 0 {
			retryAfter := int(time.Until(resetAt).Seconds()) + 1
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{
					"code":       "RATE_LIMITED",
					"message":    "Too many requests. Try again in " + strconv.Itoa(retryAfter) + " seconds.",
					"retryAfter": retryAfter,
				},
			})
		}

		return c.Next()
	}
}

// Allow reports whether one more request for key fits in the current window.
func (rl *RateLimiter) Allow(key string) bool {
	remaining, _ := rl.hit(key)
	return remaining >= 0
}

// Close stops the janitor goroutine.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, w := range rl.windows {
				if now.After(w.end) {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// KeyByIP returns the client IP as the rate limit key.
func KeyByIP(c fiber.Ctx) string {
	return "ip:" + c.IP()
}

// NewVoteRateLimiter: 10 ballots/min per IP
func NewVoteRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    10,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}

// NewLoginRateLimiter: 5 attempts/min per IP
func NewLoginRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    5,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}

// NewStatsRateLimiter: 10 req/min per IP
func NewStatsRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    10,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}
