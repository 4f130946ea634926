package main

import (
	"fmt"

	clierrors "github.com/randalmurphal/adfbridge/errors"
)

// Exit codes.
const (
	exitOK    = clierrors.ExitOK
	exitError = clierrors.ExitError
	exitUsage = clierrors.ExitUsage
)

// exitStatus ends a command with a non-zero code after the command has
// already reported why.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// usageError reports bad arguments.
func usageError(msg, usage string) error {
	return &clierrors.CLIError{
		Err:        clierrors.ErrInvalidInput,
		Message:    msg,
		Suggestion: "usage: adfbridge " + usage,
	}
}
