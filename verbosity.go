package installbuild

import (
	"errors"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/launchrctl/installbuild/internal/installbuild"
)

// LogFormat is a enum type for log output format.
type LogFormat string

const (
	LogFormatPretty LogFormat = "pretty" // LogFormatPretty is a default logger output format.
	LogFormatPlain  LogFormat = "plain"  // LogFormatPlain is a plain logger output format.
	LogFormatJSON   LogFormat = "json"   // LogFormatJSON is a json logger output format.
)

// String implements [fmt.Stringer] interface.
func (e *LogFormat) String() string {
	return string(*e)
}

// Set implements [github.com/spf13/pflag.Value] interface.
func (e *LogFormat) Set(v string) error {
	lf := LogFormat(v)
	switch lf {
	case LogFormatPlain, LogFormatJSON, LogFormatPretty:
		*e = lf
		return nil
	default:
		return errors.New(`must be one of "pretty", "plain" or "json"`)
	}
}

// Type implements [github.com/spf13/pflag.Value] interface.
func (e *LogFormat) Type() string {
	return "LogFormat"
}

type verbosityFlags struct {
	verbosity int
	quiet     bool
	logFormat LogFormat
}

func (f *verbosityFlags) register(pflags *pflag.FlagSet) {
	pflags.CountVarP(&f.verbosity, "verbose", "v", "log verbosity level, use -vvvv DEBUG, -vvv INFO, -vv WARN, -v ERROR")
	pflags.VarP(&f.logFormat, "log-format", "", "log format, may be pretty, plain or json (default pretty)")
	pflags.BoolVarP(&f.quiet, "quiet", "q", false, "disable output to the console")
}

// level returns the log level from the flags, the environment is used when -v is not given.
func (f *verbosityFlags) level() LogLevel {
	if f.verbosity > 0 {
		return installbuild.LogLevelFromVerbosity(f.verbosity)
	}
	return installbuild.LogLevelFromString(EnvVarLogLevel.Get())
}

func (f *verbosityFlags) format() LogFormat {
	if f.logFormat != "" {
		return f.logFormat
	}
	var lf LogFormat
	if err := lf.Set(EnvVarLogFormat.Get()); err != nil {
		return LogFormatPretty
	}
	return lf
}

func (f *verbosityFlags) isQuiet() bool {
	if f.quiet {
		return true
	}
	q, _ := strconv.ParseBool(EnvVarQuietMode.Get())
	return q
}

// setupOutput configures the terminal and the logger from verbosity flags.
func (app *appImpl) setupOutput() error {
	f := &app.verbosity
	if f.isQuiet() {
		Term().DisableOutput()
		app.SetStreams(NoopStreams())
	}

	streams := app.Streams()
	// Set terminal output.
	Term().SetOutput(streams.Out())
	// Enable logger.
	lvl := f.level()
	if lvl != LogLevelDisabled {
		// Logs go to stderr to keep command output parsable.
		var logger *Logger
		switch f.format() {
		case LogFormatPlain:
			logger = installbuild.NewTextHandlerLogger(streams.Err())
		case LogFormatJSON:
			logger = installbuild.NewJSONHandlerLogger(streams.Err())
		default:
			logger = installbuild.NewConsoleLogger(streams.Err())
		}
		SetLogger(logger)
	}
	Log().SetLevel(lvl)
	app.cmd.SetOut(streams.Out())
	app.cmd.SetErr(streams.Err())
	return nil
}
