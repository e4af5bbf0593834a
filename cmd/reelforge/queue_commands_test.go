package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"reelforge/internal/queue"
)

func TestQueueStatusAndList(t *testing.T) {
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

	out, _, err := runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Pending")
	requireContains(t, out, "Failed")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Alpha")
	requireContains(t, out, "Beta")

	out, _, err = runCLI(t, []string{"queue", "list", "--status", "failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list filtered: %v", err)
	}
	requireContains(t, out, "Beta")
	if strings.Contains(out, "Alpha") {
		t.Fatalf("expected filter to drop pending item, got %q", out)
	}
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha, err := env.store.NewJob(ctx, "Alpha", "prompt alpha")
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retried 1 failed items")

	updated, err := env.store.GetByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("lookup alpha: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}

	updated.Status = queue.StatusFailed
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	out, _, err = runCLI(t, []string{"queue", "clear", "--failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear failed: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed items")

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear all: %v", err)
	}
	requireContains(t, out, "Cleared")

	out, _, err = runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status after clear: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueRetrySpecificID(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha, err := env.store.NewJob(ctx, "Alpha", "prompt alpha")
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry", fmt.Sprintf("%d", alpha.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry specific: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d reset for retry", alpha.ID))
}

func TestQueueRetryInvalidID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"queue", "retry", "abc"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid item id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestQueueResetStuck(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	stuck, err := env.store.NewJob(ctx, "Stuck", "prompt stuck")
	if err != nil {
		t.Fatalf("stuck job: %v", err)
	}
	stuck.Status = queue.StatusGenerating
	if err := env.store.Update(ctx, stuck); err != nil {
		t.Fatalf("mark generating: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "reset-stuck"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue reset-stuck: %v", err)
	}
	requireContains(t, out, "Reset 1 items")

	updated, err := env.store.GetByID(ctx, stuck.ID)
	if err != nil {
		t.Fatalf("lookup stuck: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending after reset, got %s", updated.Status)
	}
}

func TestQueueRemoveCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha, err := env.store.NewJob(ctx, "Alpha", "prompt alpha")
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "remove", fmt.Sprintf("%d", alpha.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, "Removed 1 queue items")

	updated, err := env.store.GetByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("lookup alpha: %v", err)
	}
	if updated != nil {
		t.Fatalf("expected item removed, got %+v", updated)
	}
}

func TestQueueDescribeCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item, err := env.store.NewJob(ctx, "Morning Desk Tour", "A cinematic tour of a minimal desk setup")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "describe", fmt.Sprintf("%d", item.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue describe: %v", err)
	}
	requireContains(t, out, "Morning Desk Tour")
	requireContains(t, out, "Pending")
	requireContains(t, out, "A cinematic tour of a minimal desk setup")

	out, _, err = runCLI(t, []string{"queue", "describe", "9999"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue describe missing: %v", err)
	}
	requireContains(t, out, "Item 9999 not found")
}

func TestQueueDBHealthCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"queue", "db-health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue db-health: %v", err)
	}
	requireContains(t, out, "Database path:")
	requireContains(t, out, "queue_items table present: yes")
	requireContains(t, out, "Integrity check: yes")
}

func TestQueueHealthCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewJob(ctx, "Alpha", "prompt alpha"); err != nil {
		t.Fatalf("alpha: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, out, "Total: 1")
	requireContains(t, out, "Pending: 1")
	requireContains(t, out, "Failed: 0")
}
