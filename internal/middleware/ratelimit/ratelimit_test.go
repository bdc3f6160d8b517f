package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, Methods: []string{http.MethodPost}})
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("fourth request in the window should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("other clients have their own window")
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("a new window should reset the count")
	}
	if m := rl.GetMetrics(); m.TotalHits != 1 || m.ClientCount != 2 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 3)
	rl.Allow("10.0.0.1")
	*now = now.Add(11 * time.Minute)
	rl.Allow("10.0.0.2")

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Fatalf("expected 1 stale client removed, got %d", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Fatalf("expected 1 active client, got %d", rl.ActiveClients())
	}
}

func TestMiddlewareOnlyThrottlesConfiguredMethods(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "10.0.0.1" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	do := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/api/selection", nil))
		return rr
	}

	if rr := do(http.MethodPost); rr.Code != http.StatusNoContent {
		t.Fatalf("first POST status=%d", rr.Code)
	}
	rr := do(http.MethodPost)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("second POST status=%d retry=%q", rr.Code, rr.Header().Get("Retry-After"))
	}
	for i := 0; i < 5; i++ {
		if rr := do(http.MethodGet); rr.Code != http.StatusNoContent {
			t.Fatalf("GET should never be throttled, status=%d", rr.Code)
		}
	}
}
