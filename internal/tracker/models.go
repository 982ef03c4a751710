package tracker

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a tracked file.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status needs an explicit retry or overwrite
// before the file is dispatched again.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record is a tracked file persisted in SQLite, keyed by input path.
type Record struct {
	ID                int64
	InputPath         string
	OutputPath        string
	Status            Status
	Error             string
	DurationSeconds   float64
	ProcessingSeconds float64
	Model             string
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// RTF returns the real-time factor of the transcription, or 0 when the
// record carries no duration.
func (r Record) RTF() float64 {
	if r.DurationSeconds <= 0 {
		return 0
	}
	return r.ProcessingSeconds / r.DurationSeconds
}

// SortKey selects the ordering for List.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByStatus   SortKey = "status"
	SortByDuration SortKey = "duration"
)

// ParseSortKey converts a string into a known SortKey.
func ParseSortKey(value string) (SortKey, bool) {
	switch SortKey(strings.ToLower(strings.TrimSpace(value))) {
	case SortByName, "":
		return SortByName, true
	case SortByStatus:
		return SortByStatus, true
	case SortByDuration:
		return SortByDuration, true
	default:
		return "", false
	}
}

// Summary aggregates record counts and accumulated timings.
type Summary struct {
	Total           int
	Pending         int
	Processing      int
	Completed       int
	Failed          int
	TotalDuration   float64
	TotalProcessing float64
}

// AverageRTF returns the overall processing-time to media-duration ratio.
func (s Summary) AverageRTF() float64 {
	if s.TotalDuration <= 0 {
		return 0
	}
	return s.TotalProcessing / s.TotalDuration
}
