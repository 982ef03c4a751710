package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Transcription.Format {
	case "txt", "json", "both":
	default:
		return fmt.Errorf("transcription.format must be txt, json, or both (got %q)", c.Transcription.Format)
	}

	if c.Transcription.Workers < 1 {
		return errors.New("transcription.workers must be at least 1")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}

	return nil
}
