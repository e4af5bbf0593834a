package queue_test

import (
	"context"
	"testing"
	"time"

	"reelforge/internal/queue"
	"reelforge/internal/testsupport"
)

func newStore(t *testing.T) *queue.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewJobStartsPending(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, "Ocean documentary", "A short film about deep sea life")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}
	if item.Title != "Ocean documentary" {
		t.Fatalf("unexpected title %q", item.Title)
	}
	if item.ID == 0 {
		t.Fatal("expected assigned id")
	}
}

func TestNewFileStartsAtEditing(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	item, err := store.NewFile(ctx, "/downloads/ocean_life.mp4")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if item.Status != queue.StatusExported {
		t.Fatalf("expected exported status, got %s", item.Status)
	}
	if item.DownloadedFile != "/downloads/ocean_life.mp4" {
		t.Fatalf("unexpected downloaded file %q", item.DownloadedFile)
	}
	if item.Title != "ocean life" {
		t.Fatalf("expected inferred title, got %q", item.Title)
	}
}

func TestUpdatePersistsFields(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, "Title", "Prompt")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	item.Status = queue.StatusMatched
	item.EditorURL = "https://example.com/editor/abc"
	item.StockMatched = true
	item.SetProgress("Matching stock media", "done", 100)
	now := time.Now().UTC()
	item.LastHeartbeat = &now

	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != queue.StatusMatched {
		t.Fatalf("expected matched, got %s", got.Status)
	}
	if got.EditorURL != item.EditorURL {
		t.Fatalf("unexpected editor url %q", got.EditorURL)
	}
	if !got.StockMatched {
		t.Fatal("expected stock matched flag to persist")
	}
	if got.LastHeartbeat == nil {
		t.Fatal("expected heartbeat to persist")
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, err := store.NewJob(ctx, "first", "p1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.NewJob(ctx, "second", "p2"); err != nil {
		t.Fatal(err)
	}

	item, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if item == nil || item.ID != first.ID {
		t.Fatalf("expected oldest item %d, got %+v", first.ID, item)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusUploading)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil for empty status, got %+v", none)
	}
}

func TestFindBySourceRef(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	created, err := store.NewJobFromSource(ctx, "Row job", "prompt", "sheet:3")
	if err != nil {
		t.Fatalf("NewJobFromSource: %v", err)
	}

	found, err := store.FindBySourceRef(ctx, "sheet:3")
	if err != nil {
		t.Fatalf("FindBySourceRef: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected item %d, got %+v", created.ID, found)
	}

	missing, err := store.FindBySourceRef(ctx, "sheet:99")
	if err != nil {
		t.Fatalf("FindBySourceRef: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown ref, got %+v", missing)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, "stuck", "p")
	if err != nil {
		t.Fatal(err)
	}
	item.Status = queue.StatusMatching
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset item, got %d", reset)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != queue.StatusGenerated {
		t.Fatalf("expected rollback to generated, got %s", got.Status)
	}
}

func TestReclaimStaleProcessingHonorsHeartbeat(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, "stale", "p")
	if err != nil {
		t.Fatal(err)
	}
	stale := time.Now().UTC().Add(-time.Hour)
	item.Status = queue.StatusGenerating
	item.LastHeartbeat = &stale
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	fresh, err := store.NewJob(ctx, "fresh", "p")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	fresh.Status = queue.StatusGenerating
	fresh.LastHeartbeat = &now
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	reclaimed, err := store.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("expected 1 reclaimed item, got %d", reclaimed)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != queue.StatusPending {
		t.Fatalf("expected rollback to pending, got %s", got.Status)
	}

	stillFresh, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stillFresh.Status != queue.StatusGenerating {
		t.Fatalf("expected fresh item untouched, got %s", stillFresh.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, "failed job", "p")
	if err != nil {
		t.Fatal(err)
	}
	item.SetFailed("render crashed")
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	retried, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected 1 retried item, got %d", retried)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != queue.StatusPending {
		t.Fatalf("expected pending after retry, got %s", got.Status)
	}
	if got.ErrorMessage != "" {
		t.Fatalf("expected error cleared, got %q", got.ErrorMessage)
	}
}

func TestStatsAndHealth(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.NewJob(ctx, "a", "p"); err != nil {
		t.Fatal(err)
	}
	item, err := store.NewJob(ctx, "b", "p")
	if err != nil {
		t.Fatal(err)
	}
	item.Status = queue.StatusCompleted
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusCompleted] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.Completed != 1 {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestCheckHealthReportsColumns(t *testing.T) {
	store := newStore(t)
	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("unexpected health: %+v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("expected no missing columns, got %v", health.MissingColumns)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check ok")
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Matching "); !ok || status != queue.StatusMatching {
		t.Fatalf("unexpected parse result: %v %v", status, ok)
	}
	if _, ok := queue.ParseStatus("ripping"); ok {
		t.Fatal("expected unknown status to fail")
	}
}
