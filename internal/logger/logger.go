package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with application-specific methods
type Logger struct {
	zerolog.Logger
}

// New creates a new Logger instance writing to stdout
func New(level string, format string) *Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter creates a Logger writing to w
func NewWithWriter(w io.Writer, level string, format string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger

	if format == "text" || format == "console" {
		// Human-readable output for local runs
		output := zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(output).Level(lvl).With().Timestamp().Caller().Logger()
	} else {
		logger = zerolog.New(w).Level(lvl).With().Timestamp().Caller().Logger()
	}

	return &Logger{Logger: logger}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithComponent returns a new logger with the component name attached
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.With().Str("component", component).Logger(),
	}
}

// WithRunID returns a new logger tagged with the dispatch run id
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		Logger: l.With().Str("run_id", runID).Logger(),
	}
}

// WithReminder returns a new logger with the reminder id and type attached
func (l *Logger) WithReminder(reminderID int64, reminderType string) *Logger {
	return &Logger{
		Logger: l.With().Int64("reminder_id", reminderID).Str("reminder_type", reminderType).Logger(),
	}
}

// RunSummary logs the aggregate counts of a dispatch run
func (l *Logger) RunSummary(reminders, recipients, sent, failed, skipped, alreadySent int, duration time.Duration) {
	event := l.Info()
	if failed > 0 {
		event = l.Warn()
	}
	event.
		Int("reminders", reminders).
		Int("recipients", recipients).
		Int("sent", sent).
		Int("failed", failed).
		Int("skipped", skipped).
		Int("already_sent", alreadySent).
		Dur("duration", duration).
		Msg("reminder run summary")
}
