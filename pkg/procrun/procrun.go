// Package procrun runs external programs as blocking steps and reports
// their outcome as a [Result].
package procrun

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound is returned when a program can't be found or isn't executable.
var ErrNotFound = errors.New("executable file not found")

// Command describes an external program invocation.
type Command struct {
	Name    string   // Name is a human-readable step name used in messages.
	Path    string   // Path is the program path or a name to look up in PATH.
	Args    []string // Args are arguments without the program itself.
	Dir     string   // Dir is the working directory, current one if empty.
	Env     []string // Env is appended to the current environment.
	Capture bool     // Capture collects stdout instead of streaming it.
}

// String returns the command line of the command.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result is an outcome of a finished [Command].
type Result struct {
	Command  Command
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	// Err is set when the program failed to start or exited with a non-zero code.
	Err error
}

// OK reports whether the command started and exited with code 0.
func (r Result) OK() bool {
	return r.Err == nil
}

// Failure returns the error of the command with the tail of its stderr.
// The returned error wraps [Result.Err]. Nil is returned on success.
func (r Result) Failure() error {
	if r.OK() {
		return nil
	}
	if stderr := strings.TrimSpace(r.Stderr); stderr != "" {
		return fmt.Errorf("%w (stderr: %s)", r.Err, lastLines(stderr, 5))
	}
	return r.Err
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Runner runs external programs.
type Runner interface {
	// LookPath resolves a program path. It returns an error wrapping
	// [ErrNotFound] if the program doesn't exist or isn't executable.
	LookPath(file string) (string, error)
	// Run starts the command and waits for it to exit.
	Run(ctx context.Context, cmd Command) Result
	// Start launches the command without waiting for it.
	Start(cmd Command) error
}

// IsNotFound checks if err means a missing executable.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist)
}
