// Package tracker persists per-file transcription state in SQLite and
// exposes the atomic status transitions the workflow runner drives.
//
// The Store manages the database connection, schema initialization, the
// status transition guards, retry resets, and the aggregate queries backing
// the status and list commands. Records are keyed by absolute input path;
// BeginProcessing is the mutual-exclusion primitive that keeps two workers
// from picking up the same file.
//
// Treat this package as the single source of truth for job state; the
// filesystem is never consulted to decide whether a file was transcribed.
package tracker
