package writer_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"scribe/internal/transcribe"
	"scribe/internal/writer"
)

func TestWriteTextTrimsAndTerminates(t *testing.T) {
	base := filepath.Join(t.TempDir(), "sub", "episode")
	result := transcribe.Result{Text: "  hello world  \n"}

	if err := writer.Write(result, base, writer.FormatText); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(base + ".txt")
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "hello world\n" {
		t.Fatalf("unexpected text %q", string(data))
	}
	if _, err := os.Stat(base + ".json"); !os.IsNotExist(err) {
		t.Fatal("txt format should not produce a json artifact")
	}
}

func TestWriteJSONIncludesSegments(t *testing.T) {
	base := filepath.Join(t.TempDir(), "episode")
	result := transcribe.Result{
		Text: "hello",
		Segments: []transcribe.Segment{
			{Start: 0, End: 1.5, Text: "hello"},
		},
	}

	if err := writer.Write(result, base, writer.FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	var doc struct {
		File     string               `json:"file"`
		Text     string               `json:"text"`
		Segments []transcribe.Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse transcript: %v", err)
	}
	if doc.File != "episode" {
		t.Fatalf("unexpected file field %q", doc.File)
	}
	if len(doc.Segments) != 1 || doc.Segments[0].End != 1.5 {
		t.Fatalf("unexpected segments %+v", doc.Segments)
	}
}

func TestWriteJSONEmptySegmentsIsArray(t *testing.T) {
	base := filepath.Join(t.TempDir(), "episode")

	if err := writer.Write(transcribe.Result{Text: "x"}, base, writer.FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse transcript: %v", err)
	}
	if _, ok := doc["segments"].([]any); !ok {
		t.Fatalf("segments should encode as an array, got %T", doc["segments"])
	}
}

func TestWriteBothProducesBothArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "episode")

	if err := writer.Write(transcribe.Result{Text: "x"}, base, writer.FormatBoth); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, suffix := range []string{".txt", ".json"} {
		if _, err := os.Stat(base + suffix); err != nil {
			t.Fatalf("missing artifact %s: %v", suffix, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if format, ok := writer.ParseFormat(""); !ok || format != writer.FormatText {
		t.Fatalf("empty input should default to txt, got %q %v", format, ok)
	}
	if format, ok := writer.ParseFormat(" Both "); !ok || format != writer.FormatBoth {
		t.Fatalf("expected both, got %q %v", format, ok)
	}
	if _, ok := writer.ParseFormat("xml"); ok {
		t.Fatal("xml should be rejected")
	}
}
