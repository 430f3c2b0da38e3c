package procrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/execabs"

	"github.com/launchrctl/installbuild/internal/installbuild"
)

// exitCodeInterrupted is reported when a child was killed by a signal.
const exitCodeInterrupted = 130

// Executor is a [Runner] backed by the operating system processes.
type Executor struct {
	streams installbuild.Streams
}

// NewExecutor creates an [Executor] streaming non-captured output to streams.
func NewExecutor(streams installbuild.Streams) *Executor {
	if streams == nil {
		streams = installbuild.NoopStreams()
	}
	return &Executor{streams: streams}
}

// LookPath implements [Runner] interface.
// Paths with a separator are resolved against the current directory,
// bare names are searched in PATH only.
func (e *Executor) LookPath(file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if strings.ContainsRune(file, '/') || strings.ContainsRune(file, filepath.Separator) {
		file = installbuild.MustAbs(file)
	}
	p, err := execabs.LookPath(file)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotFound, file, err)
	}
	return p, nil
}

func (e *Executor) prepare(ctx context.Context, c Command) (*exec.Cmd, error) {
	path, err := e.LookPath(c.Path)
	if err != nil {
		return nil, err
	}
	cmd := execabs.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	return cmd, nil
}

// Run implements [Runner] interface.
func (e *Executor) Run(ctx context.Context, c Command) (res Result) {
	res.Command = c
	res.ExitCode = -1
	log := installbuild.Log().With("step", c.Name, "cmd", c.String(), "dir", c.Dir)
	defer installbuild.EstimateTime(func(diff time.Duration) {
		res.Duration = diff
		log.Debug("step finished", "exit_code", res.ExitCode, "duration", diff)
	})()

	cmd, err := e.prepare(ctx, c)
	if err != nil {
		res.Err = err
		return res
	}
	var stdout, stderr bytes.Buffer
	if c.Capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = e.streams.Out()
		cmd.Stderr = io.MultiWriter(e.streams.Err(), &stderr)
	}
	// Stdin isn't attached, the steps are not interactive.

	log.Debug("starting step")
	if err = cmd.Start(); err != nil {
		res.Err = fmt.Errorf("start %s: %w", c.Name, err)
		if IsNotFound(err) {
			res.Err = fmt.Errorf("%w: %w", ErrNotFound, res.Err)
		}
		return res
	}

	// Signals sent to us while the child runs are meant for the child.
	sigc := installbuild.NotifySignals()
	go installbuild.HandleSignals(ctx, sigc, func(s os.Signal, _ string) error {
		log.Debug("forwarding signal", "sig", s, "pid", cmd.Process.Pid)
		return cmd.Process.Signal(s)
	})
	defer installbuild.StopCatchSignals(sigc)

	err = cmd.Wait()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		msg := fmt.Sprintf("%s finished with exit code %d", c.Name, code)
		if code == -1 {
			code = exitCodeInterrupted
			msg = fmt.Sprintf("%s was interrupted, finished with exit code %d", c.Name, code)
		}
		res.ExitCode = code
		res.Err = installbuild.NewExitError(code, msg)
		return res
	}
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", c.Name, err)
	}
	return res
}

// Start implements [Runner] interface.
// The process is released right after the start and is never awaited.
func (e *Executor) Start(c Command) error {
	// The process must outlive the caller, it's never bound to a cancellable context.
	cmd, err := e.prepare(context.Background(), c)
	if err != nil {
		return err
	}
	if err = cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.Name, err)
	}
	installbuild.Log().Debug("process started", "step", c.Name, "cmd", c.String(), "pid", cmd.Process.Pid)
	return cmd.Process.Release()
}
