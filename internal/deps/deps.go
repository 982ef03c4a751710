// Package deps verifies the external tools transcription shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"scribe/internal/transcribe"
)

// Requirement defines an external binary scribe relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports the availability of one requirement.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// Requirements returns the binaries a transcription run needs. An empty
// launcher means the default uvx launcher.
func Requirements(launcher string) []Requirement {
	command := strings.TrimSpace(launcher)
	if command == "" {
		command = transcribe.UVXCommand
	}
	return []Requirement{
		{
			Name:        "Whisper launcher",
			Command:     command,
			Description: "runs " + transcribe.WhisperPackage + " for transcription",
		},
	}
}

// Check evaluates the requirements against PATH and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{Requirement: req}
		status.Command = strings.TrimSpace(req.Command)
		if status.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(status.Command); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", status.Command)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// FirstMissing returns the first unavailable status, if any.
func FirstMissing(statuses []Status) (Status, bool) {
	for _, status := range statuses {
		if !status.Available {
			return status, true
		}
	}
	return Status{}, false
}
