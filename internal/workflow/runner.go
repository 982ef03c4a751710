package workflow

import (
	"errors"
	"log/slog"

	"scribe/internal/logging"
	"scribe/internal/tracker"
	"scribe/internal/transcribe"
	"scribe/internal/writer"
)

// Runner executes transcription runs against an injected store and
// transcriber, so tests can substitute both.
type Runner struct {
	store       *tracker.Store
	transcriber transcribe.Transcriber
	vocab       *transcribe.Vocabulary
	logger      *slog.Logger
}

// Options describes one run.
type Options struct {
	// InputRoot is the directory scanned for media files. Unused in
	// retry mode, where the dispatch set comes from the tracker.
	InputRoot string
	// OutputRoot receives transcripts and holds the tracker state.
	OutputRoot string
	// Format selects the artifacts written per file.
	Format writer.Format
	// Workers is the worker pool width; minimum 1.
	Workers int
	// Overwrite re-transcribes files with completed records.
	Overwrite bool
	// ModelOverride forces this model for every dispatched file. Empty
	// keeps each record's stored model, falling back to the
	// transcriber's configured default.
	ModelOverride string
	// RetryFailed resets failed records to pending and dispatches
	// exactly those, skipping discovery.
	RetryFailed bool
	// OnProgress, when set, receives an event after every terminal
	// transition. Called from a single goroutine, in commit order.
	OnProgress func(Progress)
}

// ErrRunActive indicates another run already holds the output root's run
// lock.
var ErrRunActive = errors.New("another run is active for this output directory")

// NewRunner constructs a runner with injected dependencies.
func NewRunner(store *tracker.Store, transcriber transcribe.Transcriber, vocab *transcribe.Vocabulary, logger *slog.Logger) *Runner {
	return &Runner{
		store:       store,
		transcriber: transcriber,
		vocab:       vocab,
		logger:      logging.NewComponentLogger(logger, "workflow"),
	}
}

func (o *Options) normalize() {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Format == "" {
		o.Format = writer.FormatText
	}
}
