// Package transcribe wraps the external Whisper CLI that performs the
// actual speech-to-text work.
//
// This package handles:
//   - Building and running the transcription command for one media file
//   - Parsing the JSON transcript the tool writes
//   - Custom vocabulary: prompt seeding and post-transcription replacements
//
// The orchestrator treats every error from here as item-scoped; a failed
// transcription marks one record failed and never aborts the batch.
package transcribe
