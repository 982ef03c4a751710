package config

const (
	defaultLogDir    = "~/.local/share/scribe/logs"
	defaultModel     = "mlx-community/whisper-large-v3-turbo"
	defaultFormat    = "txt"
	defaultWorkers   = 1
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Transcription: Transcription{
			Model:   defaultModel,
			Format:  defaultFormat,
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
