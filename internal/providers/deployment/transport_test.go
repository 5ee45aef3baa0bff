package deployment

import (
	"net/http"
	"testing"
	"time"
)

func TestNormalizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"":                         defaultBaseURL,
		"  https://a.example/ ":    "https://a.example",
		"https://b.example/coder/": "https://b.example/coder",
	}
	for in, want := range cases {
		if got := normalizeBaseURL(in); got != want {
			t.Fatalf("normalizeBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveHTTPClient(t *testing.T) {
	custom := &http.Client{}
	if resolveHTTPClient(custom, time.Second) != custom {
		t.Fatalf("expected custom client to be returned")
	}
	c, ok := resolveHTTPClient(nil, 0).(*http.Client)
	if !ok || c.Timeout != defaultHTTPTimeout {
		t.Fatalf("expected default timeout client, got %+v", c)
	}
	c = resolveHTTPClient(nil, 3*time.Second).(*http.Client)
	if c.Timeout != 3*time.Second {
		t.Fatalf("expected configured timeout, got %s", c.Timeout)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := parseRetryAfter("5", now); got != 5*time.Second {
		t.Fatalf("expected 5s, got %s", got)
	}
	if got := parseRetryAfter("-1", now); got != 0 {
		t.Fatalf("expected 0 for negative, got %s", got)
	}
	date := now.Add(30 * time.Second).Format(http.TimeFormat)
	if got := parseRetryAfter(date, now); got != 30*time.Second {
		t.Fatalf("expected 30s from date, got %s", got)
	}
	if got := parseRetryAfter("soon", now); got != 0 {
		t.Fatalf("expected 0 for garbage, got %s", got)
	}
}
