package deps

import (
	"os"
	"path/filepath"
	"testing"

	"reelforge/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: ""},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary flagged, got %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected unset command flagged, got %#v", results[2])
	}
}

func TestCheckBrowserConfiguredBinary(t *testing.T) {
	binDir := t.TempDir()
	chrome := filepath.Join(binDir, "my-chromium")
	if err := os.WriteFile(chrome, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	status := CheckBrowser(config.Browser{Binary: chrome})
	if !status.Available {
		t.Fatalf("expected configured binary to resolve, got %q", status.Detail)
	}
	if status.Command != chrome {
		t.Fatalf("expected resolved path %q, got %q", chrome, status.Command)
	}
}

func TestCheckBrowserMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	status := CheckBrowser(config.Browser{Binary: "no-such-chromium"})
	if status.Available {
		t.Fatal("expected missing browser to be unavailable")
	}
	if status.Detail == "" {
		t.Fatal("expected detail for missing browser")
	}
}
