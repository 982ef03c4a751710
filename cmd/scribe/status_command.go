package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scribe/internal/tracker"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <output-dir>",
		Short: "Show transcription progress for an output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputRoot, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			store, err := tracker.Open(outputRoot)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary.Total == 0 {
				fmt.Fprintln(out, "No files tracked yet. Run 'scribe run' first.")
				return nil
			}

			headers := []string{"Status", "Count"}
			rows := [][]string{
				{"Pending", strconv.Itoa(summary.Pending)},
				{"Processing", strconv.Itoa(summary.Processing)},
				{"Completed", strconv.Itoa(summary.Completed)},
				{"Failed", strconv.Itoa(summary.Failed)},
				{"Total", strconv.Itoa(summary.Total)},
			}
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable(headers, rows, 1))
			} else {
				fmt.Fprintln(out, renderPlain(headers, rows))
			}
			fmt.Fprintf(out, "Database: %s\n", tracker.DatabasePath(outputRoot))

			if summary.TotalDuration > 0 {
				fmt.Fprintf(out, "Media transcribed: %s in %s",
					formatSeconds(summary.TotalDuration), formatSeconds(summary.TotalProcessing))
				if rtf := summary.AverageRTF(); rtf > 0 {
					fmt.Fprintf(out, " (average RTF %.2fx)", rtf)
				}
				fmt.Fprintln(out)
			}

			if summary.Failed > 0 {
				failed, err := store.ListByStatus(cmd.Context(), tracker.StatusFailed)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "\nFailed files:")
				for _, record := range failed {
					fmt.Fprintf(out, "  %s: %s\n", record.InputPath, record.Error)
				}
				fmt.Fprintln(out, "\nRun 'scribe retry' to reattempt failed files.")
			}
			return nil
		},
	}
}

// formatSeconds renders a duration in seconds as a compact human string.
func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	if d < time.Minute {
		return d.String()
	}
	return humanizeDuration(d)
}

func humanizeDuration(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

// relativeTime renders a timestamp like "3 hours ago" for table output.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
