package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a component-scoped zerolog logger.
type Logger struct {
	*zerolog.Logger
}

var levels = map[string]zerolog.Level{
	"development": zerolog.DebugLevel,
	"test":        zerolog.WarnLevel,
	"staging":     zerolog.InfoLevel,
	"production":  zerolog.InfoLevel,
}

// Config controls output format and verbosity.
type Config struct {
	AppEnv string
	Out    io.Writer
	// NoColor disables ANSI level colours, used when Out is not a terminal.
	NoColor bool
}

// New creates a logger for the given component using APP_ENV from the environment.
func New(component string) *Logger {
	return NewWithConfig(component, Config{AppEnv: os.Getenv("APP_ENV"), Out: os.Stdout})
}

// NewWithConfig creates a logger with explicit configuration.
func NewWithConfig(component string, cfg Config) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	production := cfg.AppEnv == "production"

	output := zerolog.ConsoleWriter{
		Out:     cfg.Out,
		NoColor: cfg.NoColor,
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("[%s] %s", component, i)
		},
		FormatLevel: func(i interface{}) string {
			level, ok := i.(string)
			if !ok {
				return "???"
			}
			if cfg.NoColor {
				return fmt.Sprintf("[%s]", levelLabel(level))
			}
			return colorLevel(level)
		},
	}
	if !production {
		output.TimeFormat = "2006-01-02 15:04:05"
	}

	zl := zerolog.New(output).Level(levelFor(cfg.AppEnv))
	if !production {
		zl = zl.With().Timestamp().Logger()
	}
	return &Logger{Logger: &zl}
}

func levelFor(env string) zerolog.Level {
	if l, ok := levels[env]; ok {
		return l
	}
	return zerolog.DebugLevel
}

func levelLabel(level string) string {
	switch level {
	case "warn":
		return "WARN"
	case "error":
		return "ERROR"
	case "fatal":
		return "FATAL"
	case "info":
		return "INFO"
	default:
		return "DEBUG"
	}
}

func colorLevel(level string) string {
	switch level {
	case "debug":
		return "\033[36m[DEBUG]\033[0m"
	case "info":
		return "\033[34m[INFO]\033[0m"
	case "warn":
		return "\033[33m[WARN]\033[0m"
	case "error":
		return "\033[31m[ERROR]\033[0m"
	case "fatal":
		return "\033[35m[FATAL]\033[0m"
	default:
		return fmt.Sprintf("[%s]", level)
	}
}

// Success logs at info level tagged as a success event.
func (l *Logger) Success() *zerolog.Event { return l.Logger.Info().Bool("success", true) }

func (l *Logger) LogInfo(msg string) { l.Info().Msg(msg) }
func (l *Logger) LogWarn(msg string) { l.Warn().Msg(msg) }

func (l *Logger) LogError(msg string, err error) {
	if err != nil {
		l.Error().Err(err).Msg(msg)
		return
	}
	l.Error().Msg(msg)
}

func (l *Logger) LogDebugf(format string, v ...interface{})   { l.Debug().Msgf(format, v...) }
func (l *Logger) LogInfof(format string, v ...interface{})    { l.Info().Msgf(format, v...) }
func (l *Logger) LogSuccessf(format string, v ...interface{}) { l.Success().Msgf(format, v...) }
func (l *Logger) LogWarnf(format string, v ...interface{})    { l.Warn().Msgf(format, v...) }
func (l *Logger) LogErrorf(format string, v ...interface{})   { l.Error().Msgf(format, v...) }

// WithJob returns a child logger that tags every event with the job id.
func (l *Logger) WithJob(jobID string) *Logger {
	child := l.Logger.With().Str("job_id", jobID).Logger()
	return &Logger{Logger: &child}
}
