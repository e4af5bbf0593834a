package main

import (
	"context"
	"testing"

	"reelforge/internal/queue"
)

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewJob(ctx, "Alpha", "prompt alpha"); err != nil {
		t.Fatalf("alpha job: %v", err)
	}
	beta, err := env.store.NewJob(ctx, "Beta", "prompt beta")
	if err != nil {
		t.Fatalf("beta job: %v", err)
	}
	beta.Status = queue.StatusFailed
	if err := env.store.Update(ctx, beta); err != nil {
		t.Fatalf("beta failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "System Status")
	requireContains(t, out, "Dependencies")
	requireContains(t, out, "Directories")
	requireContains(t, out, "Queue Status")
	requireContains(t, out, "Pending")
	requireContains(t, out, "Failed")
}

func TestTestNotifyCommandWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if out == "" {
		t.Fatal("expected test-notify to print an outcome")
	}
}
