// Package installbuild provides common app functionality.
package installbuild

import (
	"errors"

	"github.com/spf13/cobra"
)

// Command is a type alias for [cobra.Command]
// to reduce direct dependency on cobra in packages.
type Command = cobra.Command

// ExitError is an error holding an error code of executed command.
type ExitError struct {
	code int
	msg  string
}

// NewExitError creates a new ExitError.
func NewExitError(code int, msg string) error {
	return ExitError{code, msg}
}

// Error implements error interface.
func (e ExitError) Error() string {
	return e.msg
}

// ExitCode returns the exit code.
func (e ExitError) ExitCode() int {
	return e.code
}

// ExitCodeOf returns the exit code carried by err.
// Nil means success, any error without a code is 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var errExit ExitError
	if errors.As(err, &errExit) {
		return errExit.ExitCode()
	}
	return 1
}
