package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clustermaster/masterd/pkg/types"
)

var (
	// Logger is the global logger instance
	Logger zerolog.Logger
)

// Level represents log level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger
func Init(cfg Config) {
	SetLevel(cfg.Level)

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Use JSON or console output
	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// toZerologLevel maps our four-level vocabulary onto zerolog's,
// defaulting an unrecognized or empty Level to info.
func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func fromZerologLevel(level zerolog.Level) Level {
	switch level {
	case zerolog.DebugLevel:
		return DebugLevel
	case zerolog.WarnLevel:
		return WarnLevel
	case zerolog.ErrorLevel:
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// SetLevel changes the global log level immediately.
func SetLevel(level Level) {
	zerolog.SetGlobalLevel(toZerologLevel(level))
}

// CurrentLevel reports the global log level as it actually stands,
// reflecting any SetLevel or ToggleLevel call made since startup.
func CurrentLevel() Level {
	return fromZerologLevel(zerolog.GlobalLevel())
}

// revertTimer holds the pending reversion from the most recent
// ToggleLevel call with a nonzero duration, so a second toggle can
// cancel it rather than leaving two reversions racing each other.
var (
	revertMu    sync.Mutex
	revertTimer *time.Timer
)

// ToggleLevel sets the global log level to level, automatically
// reverting to whatever level was in effect beforehand after
// duration — mirroring Mesos's own /logging/toggle operator endpoint,
// where a verbosity bump is meant to be temporary. A zero duration
// leaves the change in place indefinitely, same as SetLevel.
func ToggleLevel(level Level, duration time.Duration) error {
	if level != DebugLevel && level != InfoLevel && level != WarnLevel && level != ErrorLevel {
		return fmt.Errorf("log: unknown level %q", level)
	}

	revertMu.Lock()
	defer revertMu.Unlock()

	if revertTimer != nil {
		revertTimer.Stop()
		revertTimer = nil
	}

	previous := CurrentLevel()
	SetLevel(level)

	if duration > 0 {
		revertTimer = time.AfterFunc(duration, func() {
			SetLevel(previous)
		})
	}
	return nil
}

// WithComponent creates a child logger with a component field, e.g.
// "master", "registrar", "httpapi", "readbatch".
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithFrameworkID creates a child logger scoped to a framework.
func WithFrameworkID(id types.FrameworkID) zerolog.Logger {
	return Logger.With().Str("framework_id", string(id)).Logger()
}

// WithAgentID creates a child logger scoped to an agent.
func WithAgentID(id types.AgentID) zerolog.Logger {
	return Logger.With().Str("agent_id", string(id)).Logger()
}

// WithMachineID creates a child logger scoped to a maintenance machine.
func WithMachineID(id types.MachineID) zerolog.Logger {
	return Logger.With().Str("machine", id.String()).Logger()
}

// WithStreamID creates a child logger scoped to a subscriber's HTTP
// stream.
func WithStreamID(id types.StreamID) zerolog.Logger {
	return Logger.With().Str("stream_id", id.String()).Logger()
}

// Helper functions for common logging patterns
func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}

func Fatal(msg string) {
	Logger.Fatal().Msg(msg)
}
