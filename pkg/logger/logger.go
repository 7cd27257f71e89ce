// Package logger wraps zerolog with a process-wide logger and component loggers.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu          sync.RWMutex
	initialized bool
	logger      zerolog.Logger
)

// Config controls level, format and destination
type Config struct {
	Level      string
	Format     string // json/console
	Output     string // stdout/stderr
	TimeFormat string
}

// DefaultConfig returns console logging at info level on stdout
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init configures the global logger. Later calls replace the earlier configuration.
func Init(cfg Config) {
	var output io.Writer
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}
	if cfg.Format == "console" {
		tf := cfg.TimeFormat
		if tf == "" {
			tf = time.RFC3339
		}
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: tf}
	}

	mu.Lock()
	defer mu.Unlock()
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	logger = zerolog.New(output).With().Timestamp().Logger()
	initialized = true
}

// SetOutput swaps the writer, mostly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.New(w).With().Timestamp().Logger()
	initialized = true
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the global logger, initialising defaults on first use
func Get() *zerolog.Logger {
	mu.RLock()
	ready := initialized
	l := logger
	mu.RUnlock()
	if !ready {
		Init(DefaultConfig())
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return &l
}

func Debug() *zerolog.Event { return Get().Debug() }
func Info() *zerolog.Event  { return Get().Info() }
func Warn() *zerolog.Event  { return Get().Warn() }
func Error() *zerolog.Event { return Get().Error() }

// Component returns a child logger tagged with a component name
func Component(name string) *zerolog.Logger {
	l := Get().With().Str("component", name).Logger()
	return &l
}

// SchedulerLogger records generation passes
type SchedulerLogger struct {
	base *zerolog.Logger
}

// NewSchedulerLogger creates the scheduler component logger
func NewSchedulerLogger() *SchedulerLogger {
	return &SchedulerLogger{base: Component("scheduler")}
}

// StartSchedule logs the beginning of a pass
func (l *SchedulerLogger) StartSchedule(strategy string, staff, shifts int) {
	l.base.Info().
		Str("strategy", strategy).
		Int("staff", staff).
		Int("shifts", shifts).
		Msg("generating schedule")
}

// ScheduleComplete logs the end of a pass
func (l *SchedulerLogger) ScheduleComplete(strategy string, duration time.Duration, assigned int, score float64) {
	l.base.Info().
		Str("strategy", strategy).
		Dur("duration", duration).
		Int("assigned", assigned).
		Float64("score", score).
		Msg("schedule generated")
}

// BalanceRejected logs a schedule that failed the balance check
func (l *SchedulerLogger) BalanceRejected(scheduleID, strategy, reason string) {
	l.base.Warn().
		Str("schedule_id", scheduleID).
		Str("strategy", strategy).
		Str("reason", reason).
		Msg("schedule rejected by balance check")
}

// PreferenceFallback logs a lookup that collapsed to defaults
func (l *SchedulerLogger) PreferenceFallback(staffID string, err error) {
	l.base.Debug().
		Str("staff_id", staffID).
		Err(err).
		Msg("using default preferences")
}
