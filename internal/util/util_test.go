package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "senior python developer",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "docker",
			limit:  10,
			expect: "docker",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "kubernetes operator",
			limit:  10,
			expect: "kubernetes...",
		},
		{
			name:   "flattens line breaks",
			input:  "  Senior\n\n  Go\tengineer ",
			limit:  50,
			expect: "Senior Go engineer",
		},
		{
			name:   "counts runes not bytes",
			input:  "résumé screening",
			limit:  6,
			expect: "résumé...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestWaitForReturnsImmediatelyForZeroDuration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, 0); err != nil {
		t.Fatalf("expected nil for zero duration, got %v", err)
	}
}

func TestWaitForHonoursContext(t *testing.T) {
	original := sleep
	release := make(chan struct{})
	sleep = func(time.Duration) { <-release }
	defer func() {
		close(release)
		sleep = original
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForSleeps(t *testing.T) {
	original := sleep
	var slept time.Duration
	sleep = func(d time.Duration) { slept = d }
	defer func() { sleep = original }()

	if err := WaitFor(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if slept != 3*time.Second {
		t.Fatalf("expected to sleep 3s, slept %v", slept)
	}
}
