package installer

import (
	"path/filepath"
	"strings"

	"github.com/skratchdot/open-golang/open"

	"github.com/launchrctl/installbuild/pkg/procrun"
)

// Placeholders in a reveal command.
const (
	revealPathPlaceholder = "{path}"
	revealDirPlaceholder  = "{dir}"
)

// Revealer shows a file in a file browser.
type Revealer interface {
	Reveal(path string) error
}

// openDir opens a directory with the desktop default handler.
var openDir = open.Start

// CommandRevealer launches a file browser process and doesn't wait for it.
type CommandRevealer struct {
	runner  procrun.Runner
	command []string
}

// NewRevealer creates a [Revealer] running command, or the platform
// file browser if command is empty.
func NewRevealer(runner procrun.Runner, command []string) *CommandRevealer {
	return &CommandRevealer{runner: runner, command: command}
}

// Reveal implements [Revealer] interface.
func (r *CommandRevealer) Reveal(path string) error {
	command := r.command
	if len(command) == 0 {
		command = defaultRevealCommand()
	}
	if len(command) == 0 {
		// The platform has no way to select a file, show its directory.
		return openDir(filepath.Dir(path))
	}
	args := revealArgs(command, path)
	return r.runner.Start(procrun.Command{
		Name: "file browser",
		Path: args[0],
		Args: args[1:],
	})
}

func revealArgs(command []string, path string) []string {
	repl := strings.NewReplacer(
		revealPathPlaceholder, path,
		revealDirPlaceholder, filepath.Dir(path),
	)
	args := make([]string, 0, len(command)+1)
	used := false
	for _, a := range command {
		if strings.Contains(a, revealPathPlaceholder) || strings.Contains(a, revealDirPlaceholder) {
			used = true
		}
		args = append(args, repl.Replace(a))
	}
	if !used {
		args = append(args, path)
	}
	return args
}
