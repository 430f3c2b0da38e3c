// Package installer packages a release installer: it runs the installer
// compiler, stamps the produced installer with the date and the current
// revision and reveals it in a file browser.
package installer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/launchrctl/installbuild/internal/installbuild"
	"github.com/launchrctl/installbuild/pkg/procrun"
)

// Errors of the install build.
var (
	// ErrCompilerNotFound is returned when the installer compiler can't be launched.
	// The user is already informed when it's returned.
	ErrCompilerNotFound = errors.New("installer compiler not found")
	// ErrInstallerMissing is returned when the compiler didn't produce the installer.
	ErrInstallerMissing = errors.New("installer output not found")
)

// Artifact is a stamped installer produced by a build.
type Artifact struct {
	Dir       string // Dir is the output directory.
	Path      string // Path is the stamped installer path.
	Revision  string // Revision is the revision label.
	DateStamp string // DateStamp is the date part of the name, e.g. .2024.03.07.
}

// Builder runs the install build steps in order.
type Builder struct {
	cfg      Config
	runner   procrun.Runner
	revealer Revealer
	streams  installbuild.Streams
	term     *installbuild.Terminal
	now      func() time.Time
}

// Option configures a [Builder].
type Option func(b *Builder)

// WithRunner sets a process runner.
func WithRunner(r procrun.Runner) Option {
	return func(b *Builder) { b.runner = r }
}

// WithRevealer sets a file browser launcher.
func WithRevealer(r Revealer) Option {
	return func(b *Builder) { b.revealer = r }
}

// WithStreams sets the streams used for the compiler output and user input.
func WithStreams(s installbuild.Streams) Option {
	return func(b *Builder) { b.streams = s }
}

// WithTerminal sets a terminal for user messages.
func WithTerminal(t *installbuild.Terminal) Option {
	return func(b *Builder) { b.term = t }
}

// WithClock sets a time source for the date stamp.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// New creates a [Builder]. Defaults are the OS processes, standard
// streams, the default terminal and the wall clock.
func New(cfg Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg}
	for _, o := range opts {
		o(b)
	}
	if b.streams == nil {
		b.streams = installbuild.StandardStreams()
	}
	if b.runner == nil {
		b.runner = procrun.NewExecutor(b.streams)
	}
	if b.revealer == nil {
		b.revealer = NewRevealer(b.runner, cfg.Reveal.Command)
	}
	if b.term == nil {
		b.term = installbuild.Term()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Run builds the installer and returns the output directory.
// If the installer compiler can't be launched, an empty string and
// [ErrCompilerNotFound] are returned and nothing else is executed.
func (b *Builder) Run(ctx context.Context) (string, error) {
	a, err := b.Build(ctx)
	if err != nil {
		return "", err
	}
	return a.Dir, nil
}

// Build builds the installer and returns the stamped [Artifact].
func (b *Builder) Build(ctx context.Context) (*Artifact, error) {
	cfg := b.resolveConfig()
	log := installbuild.Log().With("source_root", cfg.SourceRoot)

	b.term.Info().Printfln("Building the latest %s installer...", cfg.Product)
	if err := b.compile(ctx, cfg); err != nil {
		return nil, err
	}

	label, err := b.revision(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if label == "" {
		log.Warn("revision label is empty", "vcs_command", cfg.VCSCommand)
		b.term.Warning().Println("Version control returned an empty revision label")
	}

	date := DateStamp(b.now())
	dir := cfg.OutputPath()
	a := &Artifact{
		Dir:       dir,
		Path:      filepath.Join(dir, StampedName(cfg.Output.Name, date, label, cfg.Output.Ext)),
		Revision:  label,
		DateStamp: date,
	}
	log.Debug("stamping installer", "from", cfg.OutputFile(), "to", a.Path)
	if err = promoteArtifact(cfg.OutputFile(), a.Path); err != nil {
		return nil, fmt.Errorf("stamp installer: %w", err)
	}
	b.term.Success().Printfln("Installer is ready: %s", a.Path)

	if cfg.Reveal.Enabled {
		if err = b.revealer.Reveal(a.Path); err != nil {
			log.Warn("unable to open file browser", "error", err)
			b.term.Warning().Printfln("Unable to open a file browser: %s", err)
		}
	}
	return a, nil
}

func (b *Builder) resolveConfig() Config {
	cfg, unresolved := b.cfg.Expand()
	for _, name := range unresolved {
		installbuild.Log().Warn("environment variable is not set, the reference is used literally", "var", name)
		b.term.Warning().Printfln("Environment variable %s is not set", name)
	}
	if cfg.SourceRoot != "" {
		cfg.SourceRoot = installbuild.MustAbs(cfg.SourceRoot)
	}
	return cfg
}

func (b *Builder) compile(ctx context.Context, cfg Config) error {
	path, err := b.runner.LookPath(cfg.Compiler.Path)
	if err != nil {
		return b.compilerNotFound(cfg, err)
	}
	res := b.runner.Run(ctx, procrun.Command{
		Name: "installer compiler",
		Path: path,
		Args: []string{cfg.ScriptPath()},
	})
	if procrun.IsNotFound(res.Err) {
		return b.compilerNotFound(cfg, res.Err)
	}
	if err = res.Failure(); err != nil {
		return fmt.Errorf("compile installer: %w", err)
	}
	return nil
}

func (b *Builder) compilerNotFound(cfg Config, err error) error {
	installbuild.Log().Error("installer compiler not found", "path", cfg.Compiler.Path, "error", err)
	b.term.Error().Printfln("Installer compiler not found at %q. Please install it and rerun the install build.", cfg.Compiler.Path)
	if cfg.Interactive {
		b.term.Println("Press any key to continue...")
		if errKey := b.streams.In().WaitKeyPress(); errKey != nil {
			installbuild.Log().Debug("error waiting for a key press", "error", errKey)
		}
	}
	return fmt.Errorf("%w: %w", ErrCompilerNotFound, err)
}

func (b *Builder) revision(ctx context.Context, cfg Config) (string, error) {
	fields := strings.Fields(cfg.VCSCommand)
	if len(fields) == 0 {
		return "", errors.New("query revision: version control command is empty")
	}
	res := b.runner.Run(ctx, procrun.Command{
		Name:    "version control",
		Path:    fields[0],
		Args:    fields[1:],
		Dir:     cfg.SourceRoot,
		Capture: true,
	})
	if err := res.Failure(); err != nil {
		return "", fmt.Errorf("query revision: %w", err)
	}
	return ParseRevisionLabel(res.Stdout), nil
}
