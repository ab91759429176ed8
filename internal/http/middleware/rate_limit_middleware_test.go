package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

type mockLimiter struct {
	allow bool
	retry time.Duration
	err   error
}

func (m mockLimiter) Allow(context.Context, string, int, time.Duration) (Decision, error) {
	return Decision{
		Allowed:    m.allow,
		RetryAfter: m.retry,
		Remaining:  0,
		ResetAt:    time.Now().Add(m.retry),
	}, m.err
}

type recordingLimiter struct {
	lastKey string
}

func (r *recordingLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	r.lastKey = key
	return Decision{Allowed: true, Remaining: limit - 1, ResetAt: time.Now().Add(window)}, nil
}

func serveThroughLimiter(rl *RateLimiter, remoteAddr string) *httptest.ResponseRecorder {
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestDistributedRateLimiterFailOpenOnBackendError(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailOpen, "api")
	if rr := serveThroughLimiter(rl, "10.0.0.1:1111"); rr.Code != http.StatusOK {
		t.Fatalf("expected fail-open to allow request, got %d", rr.Code)
	}
}

func TestDistributedRateLimiterFailClosedOnBackendError(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailClosed, "api")
	rr := serveThroughLimiter(rl, "10.0.0.1:1111")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected fail-closed to reject request, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("expected Retry-After=window, got %q", got)
	}
}

func TestDistributedRateLimiterDeniedSetsRetryAfter(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{allow: false, retry: 5 * time.Second}, 1, time.Minute, FailClosed, "api")
	rr := serveThroughLimiter(rl, "10.0.0.1:1111")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Body.String() != "Too many requests" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
	if got := rr.Header().Get("Retry-After"); got != "5" {
		t.Fatalf("expected Retry-After=5, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "1" {
		t.Fatalf("expected X-RateLimit-Limit=1, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected X-RateLimit-Remaining=0, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Reset"); got == "" {
		t.Fatal("expected X-RateLimit-Reset header")
	} else if _, err := strconv.ParseInt(got, 10, 64); err != nil {
		t.Fatalf("expected numeric X-RateLimit-Reset, got %q", got)
	}
}

func TestDistributedRateLimiterAllowedSetsRateLimitHeaders(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{allow: true, retry: time.Minute}, 3, time.Minute, FailClosed, "api")
	rr := serveThroughLimiter(rl, "10.0.0.1:1111")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "3" {
		t.Fatalf("expected X-RateLimit-Limit=3, got %q", got)
	}
	if got := rr.Header().Get("Retry-After"); got != "" {
		t.Fatalf("did not expect Retry-After on allowed response, got %q", got)
	}
}

func TestRateLimiterKeysByClientIP(t *testing.T) {
	limiter := &recordingLimiter{}
	rl := NewDistributedRateLimiter(limiter, 10, time.Minute, FailClosed, "")
	serveThroughLimiter(rl, "10.0.0.7:5555")
	if limiter.lastKey != "10.0.0.7" {
		t.Fatalf("expected IP key, got %q", limiter.lastKey)
	}
	serveThroughLimiter(rl, "not-a-host-port")
	if limiter.lastKey != "not-a-host-port" {
		t.Fatalf("expected raw remote addr fallback, got %q", limiter.lastKey)
	}
}

func TestLocalFixedWindowLimiterWindowRollover(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newLocalFixedWindowLimiter(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := l.Allow(ctx, "ip", 2, time.Minute)
		if err != nil || !d.Allowed {
			t.Fatalf("request %d: expected allowed, got %+v err=%v", i, d, err)
		}
		if d.Remaining != 1-i {
			t.Fatalf("request %d: expected remaining %d, got %d", i, 1-i, d.Remaining)
		}
	}
	d, _ := l.Allow(ctx, "ip", 2, time.Minute)
	if d.Allowed || d.RetryAfter != time.Minute {
		t.Fatalf("expected denial with full retry-after, got %+v", d)
	}
	if other, _ := l.Allow(ctx, "other-ip", 2, time.Minute); !other.Allowed {
		t.Fatal("expected independent key to be allowed")
	}

	now = now.Add(time.Minute)
	if d, _ := l.Allow(ctx, "ip", 2, time.Minute); !d.Allowed {
		t.Fatalf("expected new window to allow, got %+v", d)
	}
}

func TestLocalFixedWindowLimiterEvictsStaleKeys(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newLocalFixedWindowLimiter(func() time.Time { return now })
	ctx := context.Background()

	_, _ = l.Allow(ctx, "stale", 1, time.Second)
	now = now.Add(2 * time.Minute)
	_, _ = l.Allow(ctx, "fresh", 1, time.Second)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.store["stale"]; ok {
		t.Fatal("expected stale key eviction")
	}
	if _, ok := l.store["fresh"]; !ok {
		t.Fatal("expected fresh key to be tracked")
	}
}

func TestRetryAfterHeaderRoundsUpToOneSecond(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "1",
		200 * time.Millisecond:  "1",
		1500 * time.Millisecond: "2",
		30 * time.Second:        "30",
	}
	for in, want := range cases {
		if got := retryAfterHeader(in); got != want {
			t.Fatalf("retryAfterHeader(%v)=%q want %q", in, got, want)
		}
	}
}
