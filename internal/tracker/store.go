package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// StateDirName is the subdirectory of the output root holding the tracker
// database, run lock, and vocabulary file.
const StateDirName = ".scribe"

// DatabaseFileName is the tracker database file inside the state directory.
const DatabaseFileName = "jobs.db"

// Store manages transcription job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// StateDir returns the state directory for the given output root.
func StateDir(outputRoot string) string {
	return filepath.Join(outputRoot, StateDirName)
}

// DatabasePath returns the tracker database path for the given output root.
func DatabasePath(outputRoot string) string {
	return filepath.Join(StateDir(outputRoot), DatabaseFileName)
}

// Open initializes or connects to the tracker database under outputRoot.
func Open(outputRoot string) (*Store, error) {
	stateDir := StateDir(outputRoot)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create state directory %q: %w", ErrUnavailable, stateDir, err)
	}

	dbPath := filepath.Join(stateDir, DatabaseFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %w", ErrUnavailable, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: apply pragma %q: %w", ErrUnavailable, pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

const recordColumns = "id, input_path, output_path, status, error, duration_seconds, processing_seconds, model, created_at, completed_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id         int64
		inputPath  string
		outputPath string
		statusStr  string
		errMsg     sql.NullString
		duration   sql.NullFloat64
		processing sql.NullFloat64
		model      sql.NullString
		createdRaw sql.NullString
		doneRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&inputPath,
		&outputPath,
		&statusStr,
		&errMsg,
		&duration,
		&processing,
		&model,
		&createdRaw,
		&doneRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:                id,
		InputPath:         inputPath,
		OutputPath:        outputPath,
		Status:            Status(statusStr),
		Error:             errMsg.String,
		DurationSeconds:   duration.Float64,
		ProcessingSeconds: processing.Float64,
		Model:             model.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if doneRaw.Valid {
		if done, err := parseTimeString(doneRaw.String); err == nil {
			record.CompletedAt = &done
		}
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value float64) any {
	if value <= 0 {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
