package preflight

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/uploading"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func writeToken(t *testing.T, token uploading.Token) string {
	t.Helper()
	data, err := json.Marshal(token)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckUploadToken_Valid(t *testing.T) {
	path := writeToken(t, uploading.Token{
		AccessToken: "ya29.test",
		Expiry:      time.Now().Add(time.Hour),
	})
	result := CheckUploadToken(path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckUploadToken_Expired(t *testing.T) {
	path := writeToken(t, uploading.Token{
		AccessToken: "ya29.test",
		Expiry:      time.Now().Add(-time.Hour),
	})
	result := CheckUploadToken(path)
	if result.Passed {
		t.Fatal("expected failure for expired token")
	}
}

func TestCheckUploadToken_Missing(t *testing.T) {
	result := CheckUploadToken(filepath.Join(t.TempDir(), "absent.json"))
	if result.Passed {
		t.Fatal("expected failure for missing token file")
	}
}

func TestCheckSheetSource_OK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	if err := os.WriteFile(path, []byte("Title,Prompt,Status\nA,B,pending\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Sheets.Source = path

	result := CheckSheetSource(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.DownloadDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Sheets.Source = ""
	cfg.Upload.Enabled = false

	results := RunAll(context.Background(), &cfg)
	// Staging, download, log, and library directory checks
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_IncludesUploadTokenWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.DownloadDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.LibraryDir = ""
	cfg.Sheets.Source = ""
	cfg.Upload.Enabled = true
	cfg.Upload.TokenFile = writeToken(t, uploading.Token{AccessToken: "ya29.test"})

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Upload token" {
			found = true
			if !r.Passed {
				t.Errorf("token check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected upload token check in results")
	}
}

func TestCheckSystemDeps_EditingDisabledSkipsFFmpeg(t *testing.T) {
	cfg := config.Default()
	cfg.Editing.Enabled = false

	statuses := CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 1 {
		t.Fatalf("expected browser check only, got %d statuses", len(statuses))
	}
	if statuses[0].Name != "Browser" {
		t.Fatalf("expected Browser status, got %q", statuses[0].Name)
	}
}

func TestCheckSystemDeps_EditingEnabledAddsFFmpeg(t *testing.T) {
	cfg := config.Default()
	cfg.Editing.Enabled = true

	statuses := CheckSystemDeps(context.Background(), &cfg)
	names := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		names[s.Name] = true
	}
	for _, want := range []string{"Browser", "FFmpeg", "FFprobe"} {
		if !names[want] {
			t.Fatalf("expected %s in system deps, got %v", want, names)
		}
	}
}
