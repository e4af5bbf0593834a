package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelforge/internal/daemon"
	"reelforge/internal/ipc"
	"reelforge/internal/logging"
	"reelforge/internal/queue"
	"reelforge/internal/stage"
	"reelforge/internal/testsupport"
	"reelforge/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Item) error { return nil }
func (noopStage) Execute(context.Context, *queue.Item) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	mgr := workflow.NewManagerWithNotifier(cfg, store, logger, nil)
	mgr.ConfigureStages(workflow.StageSet{Generator: noopStage{}})

	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	logPath := filepath.Join(cfg.Paths.LogDir, "ipc-test.log")
	d.SetLogPath(logPath)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "reelforge.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("unexpected pid %d", status.PID)
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}

	jobResp, err := client.JobAdd(" Morning Desk Tour ", "A cinematic tour of a minimal desk setup")
	if err != nil {
		t.Fatalf("JobAdd failed: %v", err)
	}
	if jobResp.Item.Title != "Morning Desk Tour" {
		t.Fatalf("expected trimmed title, got %q", jobResp.Item.Title)
	}
	if jobResp.Item.Status != string(queue.StatusPending) {
		t.Fatalf("expected pending job, got %s", jobResp.Item.Status)
	}

	clipPath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(clipPath, []byte("video"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	fileResp, err := client.FileAdd(clipPath)
	if err != nil {
		t.Fatalf("FileAdd failed: %v", err)
	}
	if fileResp.Item.Status != string(queue.StatusExported) {
		t.Fatalf("expected manual file to enter local lane, got %s", fileResp.Item.Status)
	}
	if fileResp.Item.DownloadedFile == "" {
		t.Fatal("expected manual item to carry the source file path")
	}

	if _, err := client.JobsSync(); err == nil {
		t.Fatal("expected JobsSync to fail without configured sheet source")
	}

	failedJob, err := store.NewJob(ctx, "Failed Job", "prompt")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	failedJob.Status = queue.StatusFailed
	failedJob.ErrorMessage = "editor never loaded"
	if err := store.Update(ctx, failedJob); err != nil {
		t.Fatalf("Update failedJob: %v", err)
	}
	stuckJob, err := store.NewJob(ctx, "Stuck Job", "prompt")
	if err != nil {
		t.Fatalf("NewJob stuck: %v", err)
	}
	stuckJob.Status = queue.StatusGenerating
	if err := store.Update(ctx, stuckJob); err != nil {
		t.Fatalf("Update stuckJob: %v", err)
	}

	listResp, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList failed: %v", err)
	}
	if len(listResp.Items) != 4 {
		t.Fatalf("expected 4 queue items, got %d", len(listResp.Items))
	}

	failedResp, err := client.QueueList([]string{string(queue.StatusFailed)})
	if err != nil {
		t.Fatalf("QueueList failed filter: %v", err)
	}
	if len(failedResp.Items) != 1 || failedResp.Items[0].ID != failedJob.ID {
		t.Fatalf("expected failed item %d, got %#v", failedJob.ID, failedResp.Items)
	}

	descResp, err := client.QueueDescribe(jobResp.Item.ID)
	if err != nil {
		t.Fatalf("QueueDescribe failed: %v", err)
	}
	if descResp.Item.Title != "Morning Desk Tour" {
		t.Fatalf("unexpected described item: %#v", descResp.Item)
	}
	if _, err := client.QueueDescribe(0); err == nil {
		t.Fatal("expected error for invalid item id")
	}

	resetResp, err := client.QueueReset()
	if err != nil {
		t.Fatalf("QueueReset failed: %v", err)
	}
	if resetResp.Updated != 1 {
		t.Fatalf("expected 1 item reset, got %d", resetResp.Updated)
	}
	reloaded, err := store.GetByID(ctx, stuckJob.ID)
	if err != nil {
		t.Fatalf("GetByID stuckJob: %v", err)
	}
	if reloaded.Status != queue.StatusPending {
		t.Fatalf("expected stuck item back at pending, got %s", reloaded.Status)
	}

	retryResp, err := client.QueueRetry(nil)
	if err != nil {
		t.Fatalf("QueueRetry failed: %v", err)
	}
	if retryResp.Updated != 1 {
		t.Fatalf("expected 1 retried item, got %d", retryResp.Updated)
	}

	healthResp, err := client.QueueHealth()
	if err != nil {
		t.Fatalf("QueueHealth failed: %v", err)
	}
	if healthResp.Total != 4 || healthResp.Pending != 3 || healthResp.Failed != 0 {
		t.Fatalf("unexpected health response: %#v", healthResp)
	}

	dbHealth, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth failed: %v", err)
	}
	if !strings.HasSuffix(dbHealth.DBPath, "queue.db") {
		t.Fatalf("unexpected db path: %s", dbHealth.DBPath)
	}

	if _, err := client.QueueRemove(nil); err == nil {
		t.Fatal("expected error for empty remove request")
	}
	removeResp, err := client.QueueRemove([]int64{failedJob.ID})
	if err != nil {
		t.Fatalf("QueueRemove failed: %v", err)
	}
	if removeResp.Removed != 1 {
		t.Fatalf("expected 1 removed item, got %d", removeResp.Removed)
	}

	reloaded.Status = queue.StatusCompleted
	if err := store.Update(ctx, reloaded); err != nil {
		t.Fatalf("Update completed: %v", err)
	}
	clearCompletedResp, err := client.QueueClearCompleted()
	if err != nil {
		t.Fatalf("QueueClearCompleted failed: %v", err)
	}
	if clearCompletedResp.Removed != 1 {
		t.Fatalf("expected 1 completed item removed, got %d", clearCompletedResp.Removed)
	}

	clearFailedResp, err := client.QueueClearFailed()
	if err != nil {
		t.Fatalf("QueueClearFailed failed: %v", err)
	}
	if clearFailedResp.Removed != 0 {
		t.Fatalf("expected no failed items left, got %d", clearFailedResp.Removed)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp.Sent {
		t.Fatal("expected no notification without configured topic")
	}
	if notifyResp.Message == "" {
		t.Fatal("expected explanatory notification message")
	}

	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	logResp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail initial failed: %v", err)
	}
	if len(logResp.Lines) != 2 || logResp.Lines[0] != "second" || logResp.Lines[1] != "third" {
		t.Fatalf("unexpected log tail response: %#v", logResp.Lines)
	}

	followDone := make(chan struct{})
	go func(offset int64) {
		resp, err := client.LogTail(ipc.LogTailRequest{Offset: offset, Follow: true, WaitMillis: 2000})
		if err != nil {
			t.Errorf("LogTail follow error: %v", err)
			return
		}
		if len(resp.Lines) != 1 || resp.Lines[0] != "fourth" {
			t.Errorf("unexpected follow lines: %#v", resp.Lines)
		}
		close(followDone)
	}(logResp.Offset)

	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("append log: %v", err)
	}
	if _, err := f.WriteString("fourth\n"); err != nil {
		t.Fatalf("write follow line: %v", err)
	}
	_ = f.Close()

	select {
	case <-followDone:
	case <-time.After(10 * time.Second):
		t.Fatal("log tail follow timed out")
	}

	clearResp, err := client.QueueClear()
	if err != nil {
		t.Fatalf("QueueClear failed: %v", err)
	}
	if clearResp.Removed != 2 {
		t.Fatalf("expected 2 items cleared, got %d", clearResp.Removed)
	}

	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status2.Running {
		t.Fatal("expected daemon to be stopped")
	}
}
