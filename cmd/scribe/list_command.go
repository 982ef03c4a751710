package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"scribe/internal/tracker"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFlag string
		sortFlag   string
	)

	cmd := &cobra.Command{
		Use:   "list <output-dir>",
		Short: "List tracked files and their state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputRoot, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			var filter tracker.Status
			if statusFlag != "" {
				parsed, ok := tracker.ParseStatus(statusFlag)
				if !ok {
					return fmt.Errorf("unknown status %q (valid: %v)", statusFlag, tracker.AllStatuses())
				}
				filter = parsed
			}
			sortKey, ok := tracker.ParseSortKey(sortFlag)
			if !ok {
				return fmt.Errorf("unknown sort key %q", sortFlag)
			}

			store, err := tracker.Open(outputRoot)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), filter, sortKey)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No matching files.")
				return nil
			}

			headers := []string{"File", "Status", "Duration", "RTF", "Completed"}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, listRow(record))
			}
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable(headers, rows, 2, 3))
			} else {
				fmt.Fprintln(out, renderPlain(headers, rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Only show files with this status")
	cmd.Flags().StringVar(&sortFlag, "sort", "name", "Sort order: name, status, or duration")

	return cmd
}

func listRow(record *tracker.Record) []string {
	duration := "-"
	if record.DurationSeconds > 0 {
		duration = formatSeconds(record.DurationSeconds)
	}
	rtf := "-"
	if value := record.RTF(); value > 0 {
		rtf = fmt.Sprintf("%.2fx", value)
	}
	completed := "-"
	if record.Status.IsTerminal() && record.CompletedAt != nil {
		completed = relativeTime(*record.CompletedAt)
	}
	return []string{
		filepath.Base(record.InputPath),
		string(record.Status),
		duration,
		rtf,
		completed,
	}
}
