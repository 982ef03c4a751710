package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/media"
	"scribe/internal/transcribe"
	"scribe/internal/writer"
)

func newSingleCommand(ctx *commandContext) *cobra.Command {
	var (
		modelFlag    string
		formatFlag   string
		languageFlag string
		outputFlag   string
		vocabFlag    string
	)

	cmd := &cobra.Command{
		Use:   "single <file>",
		Short: "Transcribe one file without touching the job database",
		Long: `Transcribe a single audio or video file. The transcript goes to stdout
unless --output names a directory, in which case txt/json artifacts are
written there the same way the run command writes them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			inputPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve input file: %w", err)
			}
			if _, err := os.Stat(inputPath); err != nil {
				return fmt.Errorf("input file not found: %s", inputPath)
			}
			if _, ok := media.KindForPath(inputPath); !ok {
				return fmt.Errorf("unsupported file type: %s", filepath.Ext(inputPath))
			}

			model := cfg.Transcription.Model
			if cmd.Flags().Changed("model") {
				model = modelFlag
			}
			language := cfg.Transcription.Language
			if cmd.Flags().Changed("language") {
				language = languageFlag
			}

			var vocab *transcribe.Vocabulary
			if vocabFlag != "" {
				expanded, err := config.ExpandPath(vocabFlag)
				if err != nil {
					return err
				}
				vocab, err = transcribe.LoadVocabulary(expanded)
				if err != nil {
					return err
				}
				if vocab == nil {
					return fmt.Errorf("vocabulary file not found: %s", expanded)
				}
			}

			service := transcribe.NewService(transcribe.Config{
				Model:         model,
				Language:      language,
				InitialPrompt: vocab.InitialPrompt(),
			})

			start := time.Now()
			result, err := service.Transcribe(cmd.Context(), inputPath, "")
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			vocab.Apply(&result)

			if outputFlag == "" {
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(result.Text))
			} else {
				outputDir, err := filepath.Abs(outputFlag)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				format, ok := writer.ParseFormat(formatOrDefault(cmd, formatFlag, cfg))
				if !ok {
					return fmt.Errorf("unsupported format %q", formatFlag)
				}
				base := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)))
				if err := writer.Write(result, base, format); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote transcript for %s\n", filepath.Base(inputPath))
			}

			if result.DurationSeconds > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Transcribed %.0fs of media in %s (RTF %.2fx)\n",
					result.DurationSeconds, elapsed.Round(time.Second),
					realTimeFactor(elapsed.Seconds(), result.DurationSeconds))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "Whisper model to use")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format when --output is set: txt, json, or both")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Language code (e.g. en); empty auto-detects")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Directory to write transcript artifacts into")
	cmd.Flags().StringVar(&vocabFlag, "vocab", "", "Path to a vocabulary JSON file")

	return cmd
}

// realTimeFactor is processing time over media duration, matching the
// ratio the tracker records per file.
func realTimeFactor(processingSeconds, durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return processingSeconds / durationSeconds
}

func formatOrDefault(cmd *cobra.Command, flagValue string, cfg *config.Config) string {
	if cmd.Flags().Changed("format") {
		return flagValue
	}
	return cfg.Transcription.Format
}
