package transcribe

// UVXCommand is the launcher used to run the Whisper CLI without a managed
// Python environment.
const UVXCommand = "uvx"

// WhisperPackage is the transcription tool uvx resolves and runs.
const WhisperPackage = "mlx-whisper"

// DefaultModel is used when no model is configured or passed on the
// command line.
const DefaultModel = "mlx-community/whisper-large-v3-turbo"

// Config holds transcription invocation settings.
type Config struct {
	// Binary overrides the launcher command. Empty means UVXCommand.
	Binary string
	// Model is the Whisper model identifier.
	Model string
	// Language is the ISO language code, empty for auto-detect.
	Language string
	// InitialPrompt seeds the decoder, typically with vocabulary terms.
	InitialPrompt string
}

// ModelOrDefault returns the configured model, falling back to DefaultModel.
func (c Config) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}
