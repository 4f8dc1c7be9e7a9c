package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestLimiter_Defaults(t *testing.T) {
	if l := NewLimiter(10, 3); l.defaultBurst != 3 {
		t.Errorf("expected burst 3, got %d", l.defaultBurst)
	}
	if l := NewLimiter(10, -1); l.defaultBurst != 5 {
		t.Errorf("expected default burst 5, got %d", l.defaultBurst)
	}
}

func TestLimiter_ZeroRateIsUnlimited(t *testing.T) {
	l := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !l.Allow("/archive/housing/letter.pdf") {
			t.Fatalf("read %d throttled with throttling disabled", i)
		}
	}
}

func TestLimiter_PerDirectory(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("/archive/housing/a.pdf") {
		t.Error("first read should pass")
	}
	if l.Allow("/archive/housing/b.pdf") {
		t.Error("second read in the same directory should be throttled")
	}
	if !l.Allow("/archive/medical/a.pdf") {
		t.Error("another directory has its own budget")
	}
}

func TestLimiter_Wait(t *testing.T) {
	l := NewLimiter(100, 1)
	ctx := context.Background()

	if err := l.Wait(ctx, "/archive/a.pdf"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := NewLimiter(0.001, 1).Wait(cancelled, "/x/y.pdf"); err == nil {
		t.Error("expected error from a cancelled context")
	}

	start := time.Now()
	if err := l.Wait(ctx, "/archive/b.pdf"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("second read waited far longer than the rate allows")
	}
}

func TestLimiter_SetDirectoryRate(t *testing.T) {
	l := NewLimiter(0, 10)
	slow := filepath.Join("archive", "slow")
	l.SetDirectoryRate(slow+string(filepath.Separator), 0.1, 1)

	if !l.Allow(filepath.Join(slow, "a.pdf")) {
		t.Error("first read should pass")
	}
	if l.Allow(filepath.Join(slow, "b.pdf")) {
		t.Error("second read should be throttled")
	}
	if !l.Allow(filepath.Join("archive", "fast", "a.pdf")) {
		t.Error("other directories keep the default rate")
	}
}
