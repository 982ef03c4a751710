package deps

import (
	"os"
	"path/filepath"
	"testing"

	"scribe/internal/transcribe"
)

func TestCheck(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := Check([]Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected stub to be available, got %#v", results[0])
	}
	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}
}

func TestRequirementsDefaultLauncher(t *testing.T) {
	reqs := Requirements("")
	if len(reqs) != 1 || reqs[0].Command != transcribe.UVXCommand {
		t.Fatalf("unexpected requirements %+v", reqs)
	}
	if custom := Requirements("/opt/uvx"); custom[0].Command != "/opt/uvx" {
		t.Fatalf("launcher override ignored: %+v", custom)
	}
}

func TestFirstMissing(t *testing.T) {
	statuses := []Status{
		{Available: true},
		{Requirement: Requirement{Name: "Missing"}, Available: false},
	}
	missing, ok := FirstMissing(statuses)
	if !ok || missing.Name != "Missing" {
		t.Fatalf("unexpected result %+v %v", missing, ok)
	}
	if _, ok := FirstMissing(statuses[:1]); ok {
		t.Fatal("expected no missing status")
	}
}
