package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.message != "" {
				fmt.Fprintln(os.Stderr, exit.message)
			}
			os.Exit(exit.code)
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// exitError carries a specific process exit code. A run that finishes with
// failed items uses it to distinguish partial success (exit 2) from usage
// and startup errors (exit 1).
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	return e.message
}

// exitCodePartialFailure is returned when a run completes but one or more
// items failed.
const exitCodePartialFailure = 2
