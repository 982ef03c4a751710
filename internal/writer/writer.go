// Package writer persists transcription results as text and JSON
// artifacts, mirroring the input directory structure.
package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/transcribe"
)

// Format selects which artifacts Write produces.
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
	FormatBoth Format = "both"
)

// ParseFormat converts a string into a known Format.
func ParseFormat(value string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText, "":
		return FormatText, true
	case FormatJSON:
		return FormatJSON, true
	case FormatBoth:
		return FormatBoth, true
	default:
		return "", false
	}
}

type jsonDocument struct {
	File     string               `json:"file"`
	Text     string               `json:"text"`
	Segments []transcribe.Segment `json:"segments"`
}

// Write persists a result at base plus the format suffix, creating
// intermediate directories as needed. Failures are reported to the caller
// so the orchestrator can record the item as failed.
func Write(result transcribe.Result, base string, format Format) error {
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if format == FormatText || format == FormatBoth {
		text := strings.TrimSpace(result.Text) + "\n"
		if err := os.WriteFile(base+".txt", []byte(text), 0o644); err != nil {
			return fmt.Errorf("write text transcript: %w", err)
		}
	}

	if format == FormatJSON || format == FormatBoth {
		doc := jsonDocument{
			File:     filepath.Base(base),
			Text:     result.Text,
			Segments: result.Segments,
		}
		if doc.Segments == nil {
			doc.Segments = []transcribe.Segment{}
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode transcript: %w", err)
		}
		if err := os.WriteFile(base+".json", append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write json transcript: %w", err)
		}
	}

	return nil
}
