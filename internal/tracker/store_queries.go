package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Get fetches a record by input path. Returns nil when no record exists.
func (s *Store) Get(ctx context.Context, inputPath string) (*Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM files WHERE input_path = ?`, inputPath)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// List returns records, optionally filtered to one status, in the order
// selected by sort. An empty filter returns every record.
func (s *Store) List(ctx context.Context, filter Status, sort SortKey) ([]*Record, error) {
	ctx = ensureContext(ctx)

	query := `SELECT ` + recordColumns + ` FROM files`
	var args []any
	if filter != "" {
		query += ` WHERE status = ?`
		args = append(args, filter)
	}

	// Sort columns are whitelisted; user input never reaches the SQL text.
	switch sort {
	case SortByStatus:
		query += ` ORDER BY status, input_path`
	case SortByDuration:
		query += ` ORDER BY duration_seconds DESC, input_path`
	default:
		query += ` ORDER BY input_path`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ListByStatus returns records matching a status ordered by input path.
func (s *Store) ListByStatus(ctx context.Context, status Status) ([]*Record, error) {
	return s.List(ctx, status, SortByName)
}

// Stats returns a single consistent aggregate snapshot of the tracker.
func (s *Store) Stats(ctx context.Context) (Summary, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1),
                COALESCE(SUM(duration_seconds), 0),
                COALESCE(SUM(processing_seconds), 0)
         FROM files GROUP BY status`,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("tracker stats: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var (
			status     Status
			count      int
			duration   float64
			processing float64
		)
		if err := rows.Scan(&status, &count, &duration, &processing); err != nil {
			return Summary{}, err
		}
		summary.Total += count
		summary.TotalDuration += duration
		summary.TotalProcessing += processing
		switch status {
		case StatusPending:
			summary.Pending = count
		case StatusProcessing:
			summary.Processing = count
		case StatusCompleted:
			summary.Completed = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	return summary, rows.Err()
}
