package appearanced

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RateLimit is a token bucket configuration.
type RateLimit struct {
	// PerSecond is the sustained rate.
	PerSecond float64

	// Burst is the bucket capacity.
	Burst int
}

// DefaultRateLimits are the per-method limits. Fetches may shell out to the
// native helper, so they are tighter than the cache-only calls.
var DefaultRateLimits = map[string]RateLimit{
	methodGetAppearance:          {PerSecond: 50, Burst: 100},
	methodGetEffectiveAppearance: {PerSecond: 50, Burst: 100},
	methodListAppearances:        {PerSecond: 200, Burst: 400},
	methodGetStatus:              {PerSecond: 1000, Burst: 1000},

	// Limits stream creation, not messages.
	methodWatch: {PerSecond: 5, Burst: 10},
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	last     time.Time
	rate     float64
	capacity float64
	denied   int64
	now      func() time.Time
}

func newBucket(cfg RateLimit, now func() time.Time) *bucket {
	return &bucket{
		tokens:   float64(cfg.Burst),
		last:     now(),
		rate:     cfg.PerSecond,
		capacity: float64(cfg.Burst),
		now:      now,
	}
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.tokens += now.Sub(b.last).Seconds() * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	b.denied++
	return false
}

// RateLimiter applies per-method token buckets to incoming RPCs.
type RateLimiter struct {
	mu      sync.Mutex
	limits  map[string]RateLimit
	buckets map[string]*bucket
	now     func() time.Time
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithMethodLimit overrides the limit for one full method name.
func WithMethodLimit(method string, limit RateLimit) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.limits[method] = limit
	}
}

// withClock replaces the time source.
func withClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// NewRateLimiter creates a limiter seeded with DefaultRateLimits.
func NewRateLimiter(opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limits:  make(map[string]RateLimit, len(DefaultRateLimits)),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	for method, limit := range DefaultRateLimits {
		rl.limits[method] = limit
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow reports whether a call to method may proceed. Methods without a
// configured limit are always allowed.
func (rl *RateLimiter) Allow(method string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[method]
	if !ok {
		limit, limited := rl.limits[method]
		if !limited {
			rl.mu.Unlock()
			return true
		}
		b = newBucket(limit, rl.now)
		rl.buckets[method] = b
	}
	rl.mu.Unlock()
	return b.allow()
}

// Denied returns how many calls to method were rejected.
func (rl *RateLimiter) Denied(method string) int64 {
	rl.mu.Lock()
	b, ok := rl.buckets[method]
	rl.mu.Unlock()
	if !ok {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.denied
}

// UnaryServerInterceptor rejects unary calls over their limit.
func (rl *RateLimiter) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !rl.Allow(info.FullMethod) {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for method %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor rejects new streams over their limit.
func (rl *RateLimiter) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !rl.Allow(info.FullMethod) {
			return status.Errorf(codes.ResourceExhausted, "rate limit exceeded for stream %s", info.FullMethod)
		}
		return handler(srv, ss)
	}
}
