package appearanced

import (
	"context"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestRateLimiterBurstAndRefill(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rl := NewRateLimiter(
		withClock(clock.Now),
		WithMethodLimit("/test/Method", RateLimit{PerSecond: 2, Burst: 3}),
	)

	for i := 0; i < 3; i++ {
		if !rl.Allow("/test/Method") {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if rl.Allow("/test/Method") {
		t.Fatal("request beyond burst should be denied")
	}
	if got := rl.Denied("/test/Method"); got != 1 {
		t.Fatalf("Denied() = %d, want 1", got)
	}

	clock.Advance(500 * time.Millisecond)
	if !rl.Allow("/test/Method") {
		t.Fatal("request after refill should be allowed")
	}
	if rl.Allow("/test/Method") {
		t.Fatal("only one token should have been refilled")
	}

	// Refill never exceeds the burst size.
	clock.Advance(time.Hour)
	for i := 0; i < 3; i++ {
		if !rl.Allow("/test/Method") {
			t.Fatalf("request %d should be allowed after long idle", i)
		}
	}
	if rl.Allow("/test/Method") {
		t.Fatal("bucket should hold at most the burst size")
	}
}

func TestRateLimiterUnlimitedMethod(t *testing.T) {
	rl := NewRateLimiter()
	for i := 0; i < 10000; i++ {
		if !rl.Allow("/unknown/Method") {
			t.Fatal("methods without a limit should always be allowed")
		}
	}
	if got := rl.Denied("/unknown/Method"); got != 0 {
		t.Fatalf("Denied() = %d, want 0", got)
	}
}

func TestRateLimiterDefaultsCoverService(t *testing.T) {
	for _, method := range []string{
		methodGetAppearance,
		methodGetEffectiveAppearance,
		methodListAppearances,
		methodGetStatus,
		methodWatch,
	} {
		if _, ok := DefaultRateLimits[method]; !ok {
			t.Errorf("no default limit for %s", method)
		}
	}
}

func TestRateLimiterInterceptors(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rl := NewRateLimiter(
		withClock(clock.Now),
		WithMethodLimit(methodGetStatus, RateLimit{PerSecond: 1, Burst: 1}),
		WithMethodLimit(methodWatch, RateLimit{PerSecond: 1, Burst: 1}),
	)

	unary := rl.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: methodGetStatus}
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	if _, err := unary(context.Background(), nil, info, handler); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	_, err := unary(context.Background(), nil, info, handler)
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("second call code = %v, want ResourceExhausted", status.Code(err))
	}

	stream := rl.StreamServerInterceptor()
	sinfo := &grpc.StreamServerInfo{FullMethod: methodWatch, IsServerStream: true}
	shandler := func(srv any, ss grpc.ServerStream) error { return nil }

	if err := stream(nil, nil, sinfo, shandler); err != nil {
		t.Fatalf("first stream error = %v", err)
	}
	if err := stream(nil, nil, sinfo, shandler); status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("second stream code = %v, want ResourceExhausted", status.Code(err))
	}
}
