package pacing

import (
	"context"
	"testing"
	"time"
)

func TestLimiterUnpacedDoesNotBlock(t *testing.T) {
	l := NewLimiter(0)

	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Fatalf("unpaced wait blocked for %v", elapsed)
	}
}

func TestLimiterPacesIterations(t *testing.T) {
	l := NewLimiter(50)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 6; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	// Burst of 1, so 5 of the 6 waits pace at 20ms each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("expected pacing, elapsed %v", elapsed)
	}
}

func TestLimiterContextCancelled(t *testing.T) {
	l := NewLimiter(1)

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestLimiterSetRate(t *testing.T) {
	l := NewLimiter(10)
	l.SetRate(0)
	if got := l.Rate(); got != 0 {
		t.Fatalf("rate: got %f want 0", got)
	}

	start := time.Now()
	for i := 0; i < 50; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("disabled pacing should not block, took %v", elapsed)
	}
}
