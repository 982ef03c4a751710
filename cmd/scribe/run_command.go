package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/deps"
	"scribe/internal/tracker"
	"scribe/internal/transcribe"
	"scribe/internal/workflow"
	"scribe/internal/writer"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		modelFlag     string
		formatFlag    string
		languageFlag  string
		overwriteFlag bool
		workersFlag   int
		vocabFlag     string
	)

	cmd := &cobra.Command{
		Use:   "run <input-dir> <output-dir>",
		Short: "Transcribe all media files under a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			inputRoot, outputRoot, err := resolveRoots(args[0], args[1])
			if err != nil {
				return err
			}

			opts := runOptions{
				model:     cfg.Transcription.Model,
				format:    cfg.Transcription.Format,
				language:  cfg.Transcription.Language,
				workers:   cfg.Transcription.Workers,
				overwrite: overwriteFlag,
				vocabPath: vocabFlag,
			}
			if cmd.Flags().Changed("model") {
				opts.model = modelFlag
				opts.modelOverridden = true
			}
			if cmd.Flags().Changed("format") {
				opts.format = formatFlag
			}
			if cmd.Flags().Changed("language") {
				opts.language = languageFlag
			}
			if cmd.Flags().Changed("workers") {
				opts.workers = workersFlag
			}

			summary, err := executeRun(cmd, logger, inputRoot, outputRoot, opts, false)
			if err != nil {
				return err
			}
			return reportRun(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "Whisper model to use")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: txt, json, or both")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Language code (e.g. en); empty auto-detects")
	cmd.Flags().BoolVar(&overwriteFlag, "overwrite", false, "Re-transcribe completed files")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Number of files transcribed in parallel")
	cmd.Flags().StringVar(&vocabFlag, "vocab", "", "Path to a vocabulary JSON file")

	return cmd
}

type runOptions struct {
	model string
	// modelOverridden records whether --model was passed explicitly. A
	// retry without it reuses each record's stored model.
	modelOverridden bool
	format          string
	language        string
	workers         int
	overwrite       bool
	vocabPath       string
}

func resolveRoots(input, output string) (string, string, error) {
	inputRoot, err := filepath.Abs(input)
	if err != nil {
		return "", "", fmt.Errorf("resolve input directory: %w", err)
	}
	info, err := os.Stat(inputRoot)
	if err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("input directory not found: %s", inputRoot)
	}

	outputRoot, err := filepath.Abs(output)
	if err != nil {
		return "", "", fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return "", "", fmt.Errorf("create output directory: %w", err)
	}
	return inputRoot, outputRoot, nil
}

// executeRun wires the store, vocabulary, transcriber, and runner for the
// run and retry commands. Retry skips discovery and dispatches only the
// records its reset touched.
func executeRun(cmd *cobra.Command, logger *slog.Logger, inputRoot, outputRoot string, opts runOptions, retryFailed bool) (workflow.Summary, error) {
	format, ok := writer.ParseFormat(opts.format)
	if !ok {
		return workflow.Summary{}, fmt.Errorf("unsupported format %q", opts.format)
	}

	if missing, found := deps.FirstMissing(deps.Check(deps.Requirements(""))); found {
		return workflow.Summary{}, fmt.Errorf("%s unavailable: %s", missing.Name, missing.Detail)
	}

	store, err := tracker.Open(outputRoot)
	if err != nil {
		return workflow.Summary{}, err
	}
	defer store.Close()

	vocab, err := loadVocabulary(opts.vocabPath, outputRoot)
	if err != nil {
		return workflow.Summary{}, err
	}

	service := transcribe.NewService(transcribe.Config{
		Model:         opts.model,
		Language:      opts.language,
		InitialPrompt: vocab.InitialPrompt(),
	})

	runner := workflow.NewRunner(store, service, vocab, logger)

	var modelOverride string
	if opts.modelOverridden {
		modelOverride = opts.model
	}

	progress := newProgressReporter()
	summary, err := runner.Run(cmd.Context(), workflow.Options{
		InputRoot:     inputRoot,
		OutputRoot:    outputRoot,
		Format:        format,
		Workers:       opts.workers,
		Overwrite:     opts.overwrite,
		RetryFailed:   retryFailed,
		ModelOverride: modelOverride,
		OnProgress:    progress.update,
	})
	progress.finish()
	return summary, err
}

func loadVocabulary(vocabPath, outputRoot string) (*transcribe.Vocabulary, error) {
	if vocabPath != "" {
		expanded, err := config.ExpandPath(vocabPath)
		if err != nil {
			return nil, err
		}
		vocab, err := transcribe.LoadVocabulary(expanded)
		if err != nil {
			return nil, err
		}
		if vocab == nil {
			return nil, fmt.Errorf("vocabulary file not found: %s", expanded)
		}
		return vocab, nil
	}
	return transcribe.LoadVocabulary(filepath.Join(tracker.StateDir(outputRoot), transcribe.VocabularyFileName))
}

func reportRun(cmd *cobra.Command, summary workflow.Summary) error {
	out := cmd.OutOrStdout()

	if summary.Dispatched == 0 {
		if summary.Discovered == 0 {
			fmt.Fprintln(out, "No supported audio/video files found.")
		} else {
			fmt.Fprintln(out, "All files already transcribed.")
		}
		return nil
	}

	fmt.Fprintf(out, "Completed %d of %d files", summary.Completed, summary.Dispatched)
	if rtf := summary.RTF(); rtf > 0 {
		fmt.Fprintf(out, " (RTF %.2fx)", rtf)
	}
	fmt.Fprintln(out)

	if summary.Failed > 0 {
		fmt.Fprintf(out, "%d file(s) failed:\n", summary.Failed)
		for _, failure := range summary.Failures {
			fmt.Fprintf(out, "  %s: %s\n", failure.Path, failure.Error)
		}
		return &exitError{code: exitCodePartialFailure}
	}
	return nil
}

// progressReporter renders a progress bar on interactive terminals and
// stays quiet otherwise (the logger already reports per-file outcomes).
type progressReporter struct {
	bar *progressbar.ProgressBar
	tty bool
}

func newProgressReporter() *progressReporter {
	return &progressReporter{tty: stdoutIsTerminal()}
}

func (p *progressReporter) update(event workflow.Progress) {
	if !p.tty {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(event.Total,
			progressbar.OptionSetDescription("Transcribing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
		)
	}
	p.bar.Describe(filepath.Base(event.Current))
	_ = p.bar.Set(event.Completed + event.Failed)
}

func (p *progressReporter) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}
