package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/stoik/phishguard/internal/observability"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the process exit code
func run(args []string) int {
	defer observability.Sync()

	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// exitError carries a specific exit code for an outcome that was already
// reported to the user
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }
