package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitFailure      = 1
	exitInvalidInput = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps rejected input to its own status so scripts can tell a bad
// batch from a failed run.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var kinded interface{ ErrorKind() string }
	if errors.As(err, &kinded) && kinded.ErrorKind() == "validation" {
		return exitInvalidInput
	}
	return exitFailure
}
