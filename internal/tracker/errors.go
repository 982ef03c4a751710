package tracker

import "errors"

// ErrInvalidTransition indicates a status transition was attempted on a
// record that is not in the required source state. It signals either a
// programming error or state corruption and must abort the run rather than
// be swallowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnavailable indicates the tracker database could not be opened.
var ErrUnavailable = errors.New("tracker database unavailable")

// ErrSchemaMismatch indicates the database was created by an incompatible
// version of this tool.
var ErrSchemaMismatch = errors.New("schema version mismatch")
