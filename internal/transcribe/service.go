package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Segment is one timed span of the transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is a completed transcription.
type Result struct {
	// Text is the full plain-text transcript.
	Text string
	// DurationSeconds is the media length, derived from the transcript
	// when the tool does not report it directly.
	DurationSeconds float64
	// Segments are the timed spans in order.
	Segments []Segment
}

// Transcriber is the collaborator contract the workflow runner depends on.
// An empty model selects the transcriber's configured default; a retried
// file passes the model recorded on its first attempt.
type Transcriber interface {
	Transcribe(ctx context.Context, path, model string) (Result, error)
	Model() string
}

// Service runs the Whisper CLI for one file at a time.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the effective model identifier for logging and tracking.
func (s *Service) Model() string {
	return s.cfg.ModelOrDefault()
}

// Transcribe runs the external tool on one media file and parses its JSON
// output. The call blocks for the full duration of the transcription; the
// context cancels the child process on interruption.
func (s *Service) Transcribe(ctx context.Context, path, model string) (Result, error) {
	var result Result

	if path == "" {
		return result, fmt.Errorf("transcribe: source path required")
	}

	workDir, err := os.MkdirTemp("", "scribe-transcribe-*")
	if err != nil {
		return result, fmt.Errorf("transcribe: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	binary := s.cfg.Binary
	if binary == "" {
		binary = UVXCommand
	}

	args := s.buildArgs(path, workDir, model)
	if err := s.run(ctx, binary, args...); err != nil {
		return result, fmt.Errorf("whisper: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	jsonPath := filepath.Join(workDir, baseName+".json")
	return loadTranscript(jsonPath)
}

func (s *Service) buildArgs(source, outputDir, model string) []string {
	if strings.TrimSpace(model) == "" {
		model = s.cfg.ModelOrDefault()
	}
	args := []string{
		WhisperPackage,
		source,
		"--model", model,
		"--output-dir", outputDir,
		"--output-format", "json",
	}
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if prompt := strings.TrimSpace(s.cfg.InitialPrompt); prompt != "" {
		args = append(args, "--initial-prompt", prompt)
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

type transcriptPayload struct {
	Text     string    `json:"text"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

func loadTranscript(jsonPath string) (Result, error) {
	var result Result

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return result, fmt.Errorf("read transcript %s: %w", jsonPath, err)
	}

	var payload transcriptPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return result, fmt.Errorf("parse transcript %s: %w", jsonPath, err)
	}

	result.Text = payload.Text
	result.Segments = payload.Segments
	result.DurationSeconds = payload.Duration
	if result.DurationSeconds == 0 && len(payload.Segments) > 0 {
		result.DurationSeconds = payload.Segments[len(payload.Segments)-1].End
	}
	return result, nil
}
