// Package workflow drives a transcription run: it reconciles discovered
// files against the tracker, dispatches claimable records to a bounded
// worker pool, applies status transitions as results arrive, and reports
// progress to the caller.
//
// All job state flows through the tracker's atomic per-key operations;
// workers never share item status with each other directly. Terminal
// transitions are applied by a single collector goroutine, so progress
// events are emitted in commit order and the final summary is computed
// only after every dispatched file reaches a terminal state.
package workflow
