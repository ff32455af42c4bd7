package worker

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/zktransfer/internal/model"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://attest.example/generateTransferProof"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different host should also work
	if err := limiter.Wait(ctx, "https://mirror.example"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitRejectsHostlessURL(t *testing.T) {
	limiter := NewLimiter(100, 1)
	if err := limiter.Wait(context.Background(), "/generateTransferProof"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	url := "https://attest.example"

	if err := limiter.Wait(context.Background(), url); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, url); err == nil {
		t.Error("expected second wait to fail once the context expires")
	}
}

// ready reports whether a request to rawURL would be let through without waiting
func ready(l *Limiter, rawURL string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, rawURL) == nil
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	url := "https://attest.example"

	if err := limiter.Wait(ctx, url); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// burst 1 is spent
	if ready(limiter, url) {
		t.Errorf("expected wait to fail (exhausted tokens)")
	}

	if !ready(limiter, "https://other.example") {
		t.Errorf("expected other host to be ready")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !ready(limiter, "https://attest.example") {
			t.Fatalf("expected unlimited limiter to allow request %d", i)
		}
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	host := "slow.example"

	limiter.SetHostRate(host, 0.1, 1)

	if !ready(limiter, "https://"+host) {
		t.Errorf("first request should pass")
	}

	if ready(limiter, "https://"+host) {
		t.Errorf("second request should fail")
	}

	if !ready(limiter, "https://fast.example") {
		t.Errorf("other host should pass")
	}
}

func TestNewLimiterFromConfig(t *testing.T) {
	limiter := NewLimiterFromConfig(model.RateLimitingConfig{
		RequestsPerSecond: 0.1,
		BurstSize:         1,
		Hosts: []model.HostRateConfig{
			{Host: "attest.example:8443", RequestsPerSecond: 0},
			{Host: "slow.example", RequestsPerSecond: 0.01, BurstSize: 2},
		},
	})

	for i := 0; i < 10; i++ {
		if !ready(limiter, "https://attest.example:8443/generateTransferProof") {
			t.Fatalf("unlimited host override should allow request %d", i)
		}
	}

	for i := 0; i < 2; i++ {
		if !ready(limiter, "https://slow.example") {
			t.Fatalf("override burst 2 should allow request %d", i)
		}
	}
	if ready(limiter, "https://slow.example") {
		t.Errorf("third request to slow.example should wait")
	}

	// hosts without an override use the default rate and burst
	if !ready(limiter, "https://attest.example") {
		t.Errorf("first request on default host should pass")
	}
	if ready(limiter, "https://attest.example") {
		t.Errorf("second request on default host should wait")
	}
}

func TestExtractHost(t *testing.T) {
	host, err := extractHost("https://attest.example:8443/foo")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "attest.example:8443" {
		t.Errorf("expected attest.example:8443, got %s", host)
	}

	if _, err := extractHost("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
