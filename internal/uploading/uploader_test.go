package uploading_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/testsupport"
	"reelforge/internal/uploading"
)

func writeToken(t *testing.T, cfg *config.Config, token uploading.Token) {
	t.Helper()
	data, err := json.Marshal(token)
	if err != nil {
		t.Fatalf("marshal token: %v", err)
	}
	if err := os.WriteFile(cfg.Upload.TokenFile, data, 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
}

func itemWithEditedFile(t *testing.T, cfg *config.Config) *queue.Item {
	t.Helper()
	dir := filepath.Join(cfg.Paths.StagingDir, "job-9")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	source := filepath.Join(dir, "desk setup tour-edited.mp4")
	if err := os.WriteFile(source, []byte("final video"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return &queue.Item{
		ID:         9,
		Title:      "desk setup tour",
		Prompt:     "A cinematic tour of a minimalist desk setup",
		Status:     queue.StatusUploading,
		EditedFile: source,
	}
}

// uploadServer fakes the two-leg resumable protocol: the POST opens a
// session pointing back at the same server, the PUT returns the video ID.
func uploadServer(t *testing.T) (*httptest.Server, *struct {
	metadata uploading.VideoMetadata
	body     []byte
	auth     string
}) {
	t.Helper()
	captured := &struct {
		metadata uploading.VideoMetadata
		body     []byte
		auth     string
	}{}

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			captured.auth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&captured.metadata); err != nil {
				t.Errorf("decode metadata: %v", err)
			}
			w.Header().Set("Location", server.URL+"/session/abc")
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			captured.body = body
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "vid123"})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestExecuteUploadsAndFilesIntoLibrary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Upload.Enabled = true
	cfg.Upload.PrivacyStatus = "unlisted"
	cfg.Upload.Tags = []string{"desk", "setup"}
	writeToken(t, cfg, uploading.Token{AccessToken: "tok-1", Expiry: time.Now().Add(time.Hour)})

	server, captured := uploadServer(t)
	uploader := uploading.NewUploaderWithEndpoint(cfg, nil, nil, nil, server.URL)

	item := itemWithEditedFile(t, cfg)
	if err := uploader.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if captured.auth != "Bearer tok-1" {
		t.Fatalf("expected bearer token, got %q", captured.auth)
	}
	if captured.metadata.Snippet.Title != "Desk Setup Tour" {
		t.Fatalf("expected title-cased metadata, got %q", captured.metadata.Snippet.Title)
	}
	if captured.metadata.Status.PrivacyStatus != "unlisted" {
		t.Fatalf("expected privacy from config, got %q", captured.metadata.Status.PrivacyStatus)
	}
	if string(captured.body) != "final video" {
		t.Fatalf("expected file bytes uploaded, got %q", captured.body)
	}
	if item.FinalFile == "" {
		t.Fatal("expected final file recorded")
	}
	if filepath.Dir(item.FinalFile) != cfg.Paths.LibraryDir {
		t.Fatalf("expected file in library dir, got %s", item.FinalFile)
	}
	if filepath.Base(item.FinalFile) != "Desk Setup Tour.mp4" {
		t.Fatalf("unexpected library name %q", item.FinalFile)
	}
	if _, err := os.Stat(item.FinalFile); err != nil {
		t.Fatalf("library file missing: %v", err)
	}
}

func TestExecuteDisabledStillFilesVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Upload.Enabled = false

	uploader := uploading.NewUploader(cfg, nil, nil, nil)
	item := itemWithEditedFile(t, cfg)
	if err := uploader.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.FinalFile == "" {
		t.Fatal("expected final file recorded even with upload disabled")
	}
	if filepath.Dir(item.FinalFile) != cfg.Paths.LibraryDir {
		t.Fatalf("expected file in library dir, got %s", item.FinalFile)
	}
}

func TestExecuteExpiredTokenIsConfigurationError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Upload.Enabled = true
	writeToken(t, cfg, uploading.Token{AccessToken: "tok-1", Expiry: time.Now().Add(-time.Hour)})

	uploader := uploading.NewUploader(cfg, nil, nil, nil)
	err := uploader.Execute(context.Background(), itemWithEditedFile(t, cfg))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestExecuteUnauthorizedIsConfigurationError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Upload.Enabled = true
	writeToken(t, cfg, uploading.Token{AccessToken: "tok-1"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	uploader := uploading.NewUploaderWithEndpoint(cfg, nil, nil, nil, server.URL)
	err := uploader.Execute(context.Background(), itemWithEditedFile(t, cfg))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestPrepareRequiresSourceFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	uploader := uploading.NewUploader(cfg, nil, nil, nil)

	item := &queue.Item{ID: 1, Title: "x", Status: queue.StatusUploading}
	if err := uploader.Prepare(context.Background(), item); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPrepareFallsBackToDownloadedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	uploader := uploading.NewUploader(cfg, nil, nil, nil)

	item := itemWithEditedFile(t, cfg)
	item.DownloadedFile = item.EditedFile
	item.EditedFile = ""
	if err := uploader.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
}

func TestVideoTitle(t *testing.T) {
	if got := uploading.VideoTitle("my morning routine"); got != "My Morning Routine" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := uploading.VideoTitle("  "); got != "Untitled" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
