package tracker

import (
	"context"
	"fmt"
	"time"
)

// UpsertPending registers a discovered file in pending state. A record that
// already exists for the input path is returned untouched.
func (s *Store) UpsertPending(ctx context.Context, inputPath, outputPath, model string) (*Record, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO files (input_path, output_path, status, model, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		inputPath,
		outputPath,
		StatusPending,
		nullableString(model),
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("upsert pending: %w", err)
	}

	record, err := s.Get(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("upsert pending: record for %q missing after insert", inputPath)
	}
	return record, nil
}

// BeginProcessing atomically claims a record for a worker. It transitions
// pending or failed records (and completed ones when allowCompleted is set)
// to processing, clearing any prior error and completion timestamp. The
// false return means another worker already holds the record or it is not
// in a claimable state; no write happens in that case.
func (s *Store) BeginProcessing(ctx context.Context, inputPath, model string, allowCompleted bool) (bool, error) {
	statuses := []any{StatusPending, StatusFailed}
	clause := `status IN (?, ?)`
	if allowCompleted {
		statuses = append(statuses, StatusCompleted)
		clause = `status IN (?, ?, ?)`
	}

	args := make([]any, 0, len(statuses)+2)
	args = append(args, StatusProcessing, nullableString(model), inputPath)
	args = append(args, statuses...)

	res, err := s.execWithRetry(
		ctx,
		`UPDATE files
         SET status = ?, error = NULL, completed_at = NULL, model = COALESCE(?, model)
         WHERE input_path = ? AND `+clause,
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("begin processing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("begin processing: rows affected: %w", err)
	}
	return affected == 1, nil
}

// Complete transitions a processing record to completed, recording the
// media duration, wall-clock processing time, and the model that produced
// the transcript. Records not currently processing are refused.
func (s *Store) Complete(ctx context.Context, inputPath string, durationSeconds, processingSeconds float64, model string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE files
         SET status = ?, error = NULL, completed_at = ?,
             duration_seconds = ?, processing_seconds = ?, model = COALESCE(?, model)
         WHERE input_path = ? AND status = ?`,
		StatusCompleted,
		time.Now().UTC().Format(time.RFC3339Nano),
		nullableFloat(durationSeconds),
		nullableFloat(processingSeconds),
		nullableString(model),
		inputPath,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("complete %s: %w", inputPath, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete %s: rows affected: %w", inputPath, err)
	}
	if affected == 0 {
		return fmt.Errorf("complete %s: %w: record is not processing", inputPath, ErrInvalidTransition)
	}
	return nil
}

// Fail transitions a processing record to failed with the given message.
// A repeated failure overwrites the previous error text. Records not
// currently processing are refused.
func (s *Store) Fail(ctx context.Context, inputPath, message string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE files
         SET status = ?, error = ?, completed_at = ?
         WHERE input_path = ? AND status = ?`,
		StatusFailed,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
		inputPath,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("fail %s: %w", inputPath, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fail %s: rows affected: %w", inputPath, err)
	}
	if affected == 0 {
		return fmt.Errorf("fail %s: %w: record is not processing", inputPath, ErrInvalidTransition)
	}
	return nil
}

// ResetFailed moves all failed records back to pending for reprocessing,
// clearing error text and completion timestamps. Returns the count reset.
func (s *Store) ResetFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE files
         SET status = ?, error = NULL, completed_at = NULL
         WHERE status = ?`,
		StatusPending,
		StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("reset failed records: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckProcessing returns records left in processing by a crashed run
// back to pending. A single run holds exclusive processing ownership, so
// the workflow runner calls this once at startup, never mid-run.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE files
         SET status = ?, error = NULL, completed_at = NULL
         WHERE status = ?`,
		StatusPending,
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck records: %w", err)
	}
	return res.RowsAffected()
}
