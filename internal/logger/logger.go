package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"dolabella/internal/domain"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog so the level can be changed on config reload.
type Logger interface {
	Log() *zerolog.Event
	Fatal() *zerolog.Event
	Err(err error) *zerolog.Event
	Error() *zerolog.Event
	Warn() *zerolog.Event
	Info() *zerolog.Event
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	With() zerolog.Context
	SetLogLevel(level string)
}

type DefaultLogger struct {
	// guards log and level, the config watcher changes them while others log
	mu      sync.RWMutex
	log     zerolog.Logger
	level   zerolog.Level
	writers []io.Writer
}

func New(cfg *domain.Config) Logger {
	l := &DefaultLogger{
		writers: make([]io.Writer, 0),
		level:   zerolog.InfoLevel,
	}

	zerolog.TimeFieldFormat = time.RFC3339

	// console output goes to stderr so it never mixes with prompts on stdout
	l.writers = append(l.writers, zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.DateTime,
	})

	if cfg.LogPath != "" {
		l.writers = append(l.writers, &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
		})
	}

	l.log = zerolog.New(io.MultiWriter(l.writers...)).With().Timestamp().Logger()
	l.SetLogLevel(cfg.LogLevel)

	return l
}

// Nop returns a logger that discards everything, used by tests.
func Nop() Logger {
	return &DefaultLogger{log: zerolog.Nop(), level: zerolog.Disabled}
}

func (l *DefaultLogger) SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = lvl
	l.log = l.log.Level(lvl)
}

func (l *DefaultLogger) current() *zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	log := l.log
	return &log
}

func (l *DefaultLogger) Log() *zerolog.Event {
	return l.current().Log()
}

func (l *DefaultLogger) Fatal() *zerolog.Event {
	return l.current().Fatal()
}

func (l *DefaultLogger) Err(err error) *zerolog.Event {
	return l.current().Err(err)
}

func (l *DefaultLogger) Error() *zerolog.Event {
	return l.current().Error()
}

func (l *DefaultLogger) Warn() *zerolog.Event {
	return l.current().Warn()
}

func (l *DefaultLogger) Info() *zerolog.Event {
	return l.current().Info()
}

func (l *DefaultLogger) Trace() *zerolog.Event {
	return l.current().Trace()
}

func (l *DefaultLogger) Debug() *zerolog.Event {
	return l.current().Debug()
}

func (l *DefaultLogger) With() zerolog.Context {
	return l.current().With()
}
