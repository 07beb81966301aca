package router

import (
	"context"
	"testing"
	"time"
)

func TestRunEmptyCommand(t *testing.T) {
	if err := Run(context.Background(), nil, true); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestRunExitStatusZero(t *testing.T) {
	if err := Run(context.Background(), []string{"sh", "-c", "exit 0"}, true); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunExitStatusNonZero(t *testing.T) {
	if err := Run(context.Background(), []string{"sh", "-c", "exit 3"}, true); err == nil {
		t.Fatal("expected error for nonzero exit")
	}
}

func TestRunMissingBinary(t *testing.T) {
	if err := Run(context.Background(), []string{"/no/such/router-sim"}, true); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestRunContextCancelKillsProcess(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Run(ctx, []string{"sleep", "30"}, true)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("cancellation did not kill the process promptly")
	}
}
