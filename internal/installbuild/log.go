package installbuild

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/pterm/pterm"
)

var defaultLogger atomic.Pointer[Logger]

func init() {
	// Logs are discarded until the app decides otherwise.
	SetLogger(NewTextHandlerLogger(io.Discard))
}

// Slog is an alias for [slog.Logger] to reduce visible dependencies.
type Slog = slog.Logger

// Logger is a logger and its config holder struct.
type Logger struct {
	*Slog
	LogOptions
}

// A LogLevel is the importance or severity of a log event.
type LogLevel int

// Log levels.
const (
	LogLevelDisabled LogLevel = iota // LogLevelDisabled does never print.
	LogLevelDebug                    // LogLevelDebug is the log level for debug.
	LogLevelInfo                     // LogLevelInfo is the log level for info.
	LogLevelWarn                     // LogLevelWarn is the log level for warnings.
	LogLevelError                    // LogLevelError is the log level for errors.
)

var logLevelNames = map[LogLevel]string{
	LogLevelDisabled: "NONE",
	LogLevelDebug:    "DEBUG",
	LogLevelInfo:     "INFO",
	LogLevelWarn:     "WARN",
	LogLevelError:    "ERROR",
}

// String implements [fmt.Stringer] interface.
func (l LogLevel) String() string {
	if s, ok := logLevelNames[l]; ok {
		return s
	}
	return logLevelNames[LogLevelDisabled]
}

// LogLevelFromString returns a level by its name, case-insensitive.
// Unknown names disable logging.
func LogLevelFromString(s string) LogLevel {
	s = strings.ToUpper(strings.TrimSpace(s))
	for l, n := range logLevelNames {
		if n == s {
			return l
		}
	}
	return LogLevelDisabled
}

// LogLevelFromVerbosity maps a count of -v flags to a level.
func LogLevelFromVerbosity(v int) LogLevel {
	switch v {
	case 1:
		return LogLevelError
	case 2:
		return LogLevelWarn
	case 3:
		return LogLevelInfo
	case 4:
		return LogLevelDebug
	default:
		if v > 4 {
			return LogLevelDebug
		}
		return LogLevelDisabled
	}
}

// LogOptions is a common interface to allow adjusting the logger.
type LogOptions interface {
	// Level returns the currently set log level.
	Level() LogLevel
	// SetLevel sets log level.
	SetLevel(l LogLevel)
	// SetOutput sets logger output.
	SetOutput(w io.Writer)
}

type ptermOpts struct {
	pterm *pterm.Logger
	lvl   LogLevel
}

func (o *ptermOpts) Level() LogLevel { return o.lvl }

func (o *ptermOpts) SetLevel(l LogLevel) {
	o.lvl = l
	o.pterm.Level = ptermLevel(l)
}

func (o *ptermOpts) SetOutput(w io.Writer) { o.pterm.Writer = w }

func ptermLevel(l LogLevel) pterm.LogLevel {
	switch l {
	case LogLevelDisabled:
		return pterm.LogLevelDisabled
	case LogLevelDebug:
		return pterm.LogLevelDebug
	case LogLevelInfo:
		return pterm.LogLevelInfo
	case LogLevelWarn:
		return pterm.LogLevelWarn
	case LogLevelError:
		return pterm.LogLevelError
	default:
		panic(fmt.Sprintf("mapping for LogLevel(%d) is missing for pterm", l))
	}
}

// slogOpts keeps the writer and level switchable after the handler is built.
type slogOpts struct {
	io.Writer
	*slog.LevelVar
	lvl LogLevel
}

func (o *slogOpts) Level() LogLevel { return o.lvl }

func (o *slogOpts) SetLevel(l LogLevel) {
	o.lvl = l
	o.LevelVar.Set(slogLevel(l))
}

func (o *slogOpts) SetOutput(w io.Writer) { o.Writer = w }

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDisabled:
		// Nothing is logged above this level.
		return slog.Level(100)
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		panic(fmt.Sprintf("mapping for LogLevel(%d) is missing for slog", l))
	}
}

// NewConsoleLogger creates a pretty console logger backed by pterm.
func NewConsoleLogger(w io.Writer) *Logger {
	l := pterm.DefaultLogger
	opts := &ptermOpts{pterm: &l}
	opts.SetOutput(w)
	opts.SetLevel(LogLevelDisabled)
	return &Logger{
		Slog:       slog.New(pterm.NewSlogHandler(opts.pterm)),
		LogOptions: opts,
	}
}

func newSlogOpts(w io.Writer) (*slogOpts, *slog.HandlerOptions) {
	opts := &slogOpts{Writer: w, LevelVar: &slog.LevelVar{}}
	opts.SetLevel(LogLevelDisabled)
	return opts, &slog.HandlerOptions{Level: opts.LevelVar}
}

// NewTextHandlerLogger creates a logger with plain slog text output.
func NewTextHandlerLogger(w io.Writer) *Logger {
	opts, handlerOpts := newSlogOpts(w)
	return &Logger{
		Slog:       slog.New(slog.NewTextHandler(opts, handlerOpts)),
		LogOptions: opts,
	}
}

// NewJSONHandlerLogger creates a logger with JSON output.
func NewJSONHandlerLogger(w io.Writer) *Logger {
	opts, handlerOpts := newSlogOpts(w)
	return &Logger{
		Slog:       slog.New(slog.NewJSONHandler(opts, handlerOpts)),
		LogOptions: opts,
	}
}

// Log returns the default logger.
func Log() *Logger {
	return defaultLogger.Load()
}

// SetLogger sets the default logger.
func SetLogger(l *Logger) {
	defaultLogger.Store(l)
}
