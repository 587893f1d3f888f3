package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/morphea/morphea-backend/internal/config"
)

func rateCtx(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/interpretar", nil)
	req.RemoteAddr = "203.0.113.9:4711"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/interpretar")
	return c
}

func TestBucketKeyUsesAuthenticatedUser(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}

	c := rateCtx(t)
	c.Set("user_id", uint64(42))
	if got := bucketKey(cfg, c); got != "rl:user:42" {
		t.Fatalf("key = %q, want rl:user:42", got)
	}

	// Before JWTAuth runs, the user part degrades to anon rather than
	// erroring, which merges unauthenticated traffic into one bucket.
	if got := bucketKey(cfg, rateCtx(t)); got != "rl:user:anon" {
		t.Fatalf("key = %q, want rl:user:anon", got)
	}
}

func TestBucketKeyStrategies(t *testing.T) {
	cases := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:203.0.113.9"},
		{"user", "rl:user:7"},
		{"route", "rl:route:POST /interpretar"},
		{"user_route", "rl:user:7:route:POST /interpretar"},
		{"ip_user_route", "rl:ip:203.0.113.9:user:7:route:POST /interpretar"},
		{"", "rl:ip:203.0.113.9:user:7:route:POST /interpretar"},
	}
	for _, tc := range cases {
		t.Run(tc.strategy, func(t *testing.T) {
			c := rateCtx(t)
			c.Set("user_id", uint64(7))
			cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tc.strategy}
			if got := bucketKey(cfg, c); got != tc.want {
				t.Fatalf("key = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequesterIDFallsBackToEmail(t *testing.T) {
	c := rateCtx(t)
	c.Set("email", "ana@example.com")
	if got := requesterID(c); got != "ana@example.com" {
		t.Fatalf("requesterID = %q", got)
	}
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	c := rateCtx(t)
	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if !called {
		t.Fatal("next handler was not invoked")
	}
	if got := c.Response().Header().Get("X-RateLimit-Limit"); got != "" {
		t.Fatalf("disabled limiter set headers: %q", got)
	}
}

func TestBucketKeyUnknownIP(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/plans", nil)
	req.RemoteAddr = ""
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/plans")

	got := bucketKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c)
	if !strings.HasPrefix(got, "rl:ip:") {
		t.Fatalf("key = %q", got)
	}
}
