package http

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRateLimiterRefills(t *testing.T) {
	now := time.Unix(0, 0)
	rl := newRateLimiter(3)
	rl.now = func() time.Time { return now }
	rl.last = now

	for i := range 3 {
		if !rl.allow() {
			t.Fatalf("frame %d should be allowed", i)
		}
	}
	if rl.allow() {
		t.Fatal("fourth frame in the same instant must be limited")
	}

	now = now.Add(30 * time.Second) // 1.5 tokens at 3/min
	if !rl.allow() {
		t.Fatal("expected a token after 30s")
	}
	if rl.allow() {
		t.Fatal("only one whole token should have been refilled")
	}

	now = now.Add(time.Hour)
	for i := range 3 {
		if !rl.allow() {
			t.Fatalf("frame %d after long idle should be allowed", i)
		}
	}
	if rl.allow() {
		t.Fatal("bucket must cap at the per-minute limit")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := newRateLimiter(0)
	if rl != nil {
		t.Fatal("expected nil limiter for non-positive limit")
	}
	for range 1000 {
		if !rl.allow() {
			t.Fatal("nil limiter must allow everything")
		}
	}
}

func TestOriginPatterns(t *testing.T) {
	logger := zerolog.Nop()

	patterns, allowAll := originPatterns([]string{
		" https://Chat.Example.com ",
		"*.example.org",
		"http://localhost:3000",
		"",
		"https://",
	}, &logger)
	if allowAll {
		t.Fatal("allowAll must be false without *")
	}
	want := []string{"chat.example.com", "*.example.org", "localhost:3000"}
	if len(patterns) != len(want) {
		t.Fatalf("patterns = %v, want %v", patterns, want)
	}
	for i := range want {
		if patterns[i] != want[i] {
			t.Fatalf("patterns = %v, want %v", patterns, want)
		}
	}

	if _, allowAll := originPatterns([]string{"*"}, &logger); !allowAll {
		t.Fatal("expected * to allow every origin")
	}

	if opts := acceptOptions(nil, &logger); !opts.InsecureSkipVerify {
		t.Fatal("empty allow-list must skip origin verification")
	}
	if opts := acceptOptions([]string{"https://chat.example.com"}, &logger); opts.InsecureSkipVerify || len(opts.OriginPatterns) != 1 {
		t.Fatalf("unexpected accept options: %+v", opts)
	}
}
