package installbuild

import (
	"errors"
	"os"

	"github.com/launchrctl/installbuild/internal/installbuild"
	"github.com/launchrctl/installbuild/pkg/installer"
)

// exitCodeCompilerNotFound is returned when the installer compiler is missing.
// The user is informed by the builder, nothing is printed on exit.
const exitCodeCompilerNotFound = 2

type appImpl struct {
	// Cli related.
	cmd       *Command
	verbosity verbosityFlags
	cfgFlags  configFlags

	// FS related.
	workDir string
	cfgDir  string

	streams Streams
}

func newApp() *appImpl {
	return &appImpl{}
}

func (app *appImpl) GetWD() string        { return app.workDir }
func (app *appImpl) Streams() Streams     { return app.streams }
func (app *appImpl) SetStreams(s Streams) { app.streams = s }

// init initializes application and commands.
func (app *appImpl) init() error {
	v := setAppVersion()
	// Set root command.
	app.cmd = &Command{
		Use:   name,
		Short: "Builds a release installer stamped with the date and the source revision",
		// Errors are printed in Execute.
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       v.Version,
		RunE: func(cmd *Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(_ *Command, _ []string) error {
			return app.setupOutput()
		},
	}
	app.cmd.SetVersionTemplate(v.Full() + "\n")
	// Set io streams.
	app.SetStreams(StandardStreams())
	app.cmd.SetIn(app.streams.In())
	app.cmd.SetOut(app.streams.Out())
	app.cmd.SetErr(app.streams.Err())
	// Early errors must be visible, verbosity flags adjust it later.
	Term().EnableOutput()
	Term().SetOutput(app.streams.Out())

	// Set working dir and config dir.
	app.workDir = MustAbs(".")
	app.cfgDir = installbuild.ConfigDir()

	pflags := app.cmd.PersistentFlags()
	app.verbosity.register(pflags)
	app.cfgFlags.register(pflags)

	app.cmd.AddCommand(app.buildCmd(), app.configCmd())
	return nil
}

func (app *appImpl) exec() error {
	return app.cmd.Execute()
}

// Execute is an entrypoint to the installbuild app.
func (app *appImpl) Execute() int {
	var err error
	if err = app.init(); err != nil {
		Term().Error().Println(err)
		return 125
	}
	if err = app.exec(); err != nil {
		if errors.Is(err, installer.ErrCompilerNotFound) {
			Log().Debug("installer compiler not found", "error", err)
			return exitCodeCompilerNotFound
		}
		status := installbuild.ExitCodeOf(err)
		if msg := err.Error(); msg != "" {
			Term().Error().Println(msg)
		}
		return status
	}

	return 0
}

// Run executes the application.
func Run() int {
	return newApp().Execute()
}

// RunAndExit runs the application and exits with a result code.
func RunAndExit() {
	os.Exit(Run())
}
