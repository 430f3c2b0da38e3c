// Package installbuild has application implementation.
package installbuild

import (
	"github.com/launchrctl/installbuild/internal/installbuild"
)

// LogLevelDisabled does never print.
const LogLevelDisabled = installbuild.LogLevelDisabled

// Application environment variables.
const (
	// EnvVarLogLevel defines currently set log level.
	EnvVarLogLevel = installbuild.EnvVarLogLevel
	// EnvVarLogFormat defines currently set log format, see --log-format flag.
	EnvVarLogFormat = installbuild.EnvVarLogFormat
	// EnvVarQuietMode defines if the application should output anything, see --quiet flag.
	EnvVarQuietMode = installbuild.EnvVarQuietMode
)

// Re-export types aliases for usage by external modules.
type (
	// AppVersion stores application version.
	AppVersion = installbuild.AppVersion
	// Command is an application command to execute.
	Command = installbuild.Command

	// Logger is a logger and its config holder struct.
	Logger = installbuild.Logger
	// A LogLevel is the importance or severity of a log event.
	LogLevel = installbuild.LogLevel

	// Terminal prints formatted text to the console.
	Terminal = installbuild.Terminal
	// Streams is an interface which exposes the standard input and output streams.
	Streams = installbuild.Streams
)

// Term returns default [Terminal] to print application messages to the console.
func Term() *Terminal { return installbuild.Term() }

// StandardStreams returns streams bound to stdin, stdout and stderr.
func StandardStreams() Streams { return installbuild.StandardStreams() }

// NoopStreams provides streams like /dev/null.
func NoopStreams() Streams { return installbuild.NoopStreams() }

// Log returns the default logger.
func Log() *Logger { return installbuild.Log() }

// SetLogger sets the default logger.
func SetLogger(l *Logger) { installbuild.SetLogger(l) }

// MustAbs returns absolute filepath and panics on error.
func MustAbs(path string) string { return installbuild.MustAbs(path) }
