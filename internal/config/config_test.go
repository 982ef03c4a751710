package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists to be false")
	}
	if cfg.Transcription.Model != defaultModel {
		t.Fatalf("unexpected model %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.Workers != defaultWorkers {
		t.Fatalf("unexpected workers %d", cfg.Transcription.Workers)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[transcription]
model = "  custom-model  "
format = "JSON"
language = "EN"
workers = 4

[logging]
level = "Debug"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved=%q exists=true, got %q %v", path, resolved, exists)
	}
	if cfg.Transcription.Model != "custom-model" {
		t.Fatalf("model not trimmed: %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.Format != "json" {
		t.Fatalf("format not lowercased: %q", cfg.Transcription.Format)
	}
	if cfg.Transcription.Language != "en" {
		t.Fatalf("language not lowercased: %q", cfg.Transcription.Language)
	}
	if cfg.Transcription.Workers != 4 {
		t.Fatalf("unexpected workers %d", cfg.Transcription.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level not lowercased: %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := writeConfig(t, `
[transcription]
format = "xml"
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "transcription.format") {
		t.Fatalf("expected format validation error, got %v", err)
	}
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	path := writeConfig(t, `
[transcription]
workers = -2
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "workers") {
		t.Fatalf("expected workers validation error, got %v", err)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, "not toml [")
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := expandPath("~/logs")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, "logs") {
		t.Fatalf("expected %q, got %q", filepath.Join(home, "logs"), got)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load: exists=%v err=%v", exists, err)
	}
}

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
