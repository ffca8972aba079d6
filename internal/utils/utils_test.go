package utils

import (
	"context"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	if err := WaitFor(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("expected nil after waiting, got %v", err)
	}
}

func TestWaitForZeroDuration(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) { t.Fatal("sleep should not be called") }
	defer func() { sleep = originalSleep }()

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("expected nil for zero duration, got %v", err)
	}
}

func TestWaitForCancelledContext(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) { time.Sleep(time.Second) }
	defer func() { sleep = originalSleep }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := WaitFor(ctx, time.Second)
	if err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("wait should return promptly on cancellation")
	}
}
