package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var (
		modelFlag   string
		formatFlag  string
		workersFlag int
		vocabFlag   string
	)

	cmd := &cobra.Command{
		Use:   "retry <output-dir>",
		Short: "Reattempt files that failed on a previous run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			// Retry dispatches from the tracker, so no input root is
			// needed or scanned.
			outputRoot, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			opts := runOptions{
				model:     cfg.Transcription.Model,
				format:    cfg.Transcription.Format,
				language:  cfg.Transcription.Language,
				workers:   cfg.Transcription.Workers,
				vocabPath: vocabFlag,
			}
			if cmd.Flags().Changed("model") {
				opts.model = modelFlag
				opts.modelOverridden = true
			}
			if cmd.Flags().Changed("format") {
				opts.format = formatFlag
			}
			if cmd.Flags().Changed("workers") {
				opts.workers = workersFlag
			}

			summary, err := executeRun(cmd, logger, "", outputRoot, opts, true)
			if err != nil {
				return err
			}
			if summary.Dispatched == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No failed files to retry.")
				return nil
			}
			return reportRun(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "Whisper model to use (default: same as the original attempt)")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: txt, json, or both")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Number of files transcribed in parallel")
	cmd.Flags().StringVar(&vocabFlag, "vocab", "", "Path to a vocabulary JSON file")

	return cmd
}
