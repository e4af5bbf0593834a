package exporting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForDownloadReturnsFinishedFile(t *testing.T) {
	dir := t.TempDir()

	go func() {
		time.Sleep(60 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("rendered video"), 0o644)
	}()

	path, err := WaitForDownload(context.Background(), WatchOptions{
		Dir:          dir,
		Timeout:      5 * time.Second,
		PollInterval: 25 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("WaitForDownload: %v", err)
	}
	if filepath.Base(path) != "clip.mp4" {
		t.Fatalf("unexpected file %q", path)
	}
}

func TestWaitForDownloadIgnoresPartialUntilRenamed(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "clip.mp4.crdownload")

	go func() {
		time.Sleep(40 * time.Millisecond)
		_ = os.WriteFile(partial, []byte("partial"), 0o644)
		time.Sleep(120 * time.Millisecond)
		_ = os.Rename(partial, filepath.Join(dir, "clip.mp4"))
	}()

	path, err := WaitForDownload(context.Background(), WatchOptions{
		Dir:          dir,
		Timeout:      5 * time.Second,
		PollInterval: 25 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("WaitForDownload: %v", err)
	}
	if filepath.Base(path) != "clip.mp4" {
		t.Fatalf("expected completed rename target, got %q", path)
	}
}

func TestWaitForDownloadTimesOut(t *testing.T) {
	dir := t.TempDir()

	_, err := WaitForDownload(context.Background(), WatchOptions{
		Dir:          dir,
		Timeout:      150 * time.Millisecond,
		PollInterval: 25 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestWaitForDownloadIgnoresPreexistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old.mp4"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Let the mtime fall clearly before the watch starts.
	time.Sleep(20 * time.Millisecond)

	_, err := WaitForDownload(context.Background(), WatchOptions{
		Dir:          dir,
		Timeout:      150 * time.Millisecond,
		PollInterval: 25 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout, pre-existing files must not match")
	}
}

func TestWaitForDownloadHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := WaitForDownload(ctx, WatchOptions{
		Dir:          dir,
		Timeout:      10 * time.Second,
		PollInterval: 25 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestIsCandidate(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"clip.mp4", true},
		{"clip.MOV", true},
		{"clip.webm", true},
		{"clip.mp4.crdownload", false},
		{"clip.mp4.part", false},
		{"notes.txt", false},
	}
	for _, tc := range cases {
		if got := isCandidate(tc.path); got != tc.want {
			t.Fatalf("isCandidate(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
