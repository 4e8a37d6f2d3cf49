package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level string
	JSON  bool

	// File enables a rotated copy of the log, always in JSON.
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

var current atomic.Pointer[charmlog.Logger]

func init() {
	current.Store(newLogger(os.Stderr, charmlog.InfoLevel, false))
}

// Get returns the process logger.
func Get() *charmlog.Logger {
	return current.Load()
}

// Setup replaces the process logger. The returned cleanup closes the log file,
// if any.
func Setup(c Config) (func(), error) {
	level := charmlog.InfoLevel
	if c.Level != "" {
		var err error
		level, err = charmlog.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	cleanup := func() {}
	var output io.Writer = os.Stderr
	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   true,
		}
		cleanup = func() {
			_ = rotator.Close()
		}
		output = io.MultiWriter(os.Stderr, rotator)
		c.JSON = true
	}

	current.Store(newLogger(output, level, c.JSON))
	return cleanup, nil
}

// SetOutput is meant for tests that want to inspect or silence the log.
func SetOutput(w io.Writer) {
	l := Get()
	current.Store(newLogger(w, l.GetLevel(), false))
}

func newLogger(w io.Writer, level charmlog.Level, json bool) *charmlog.Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
		Level:           level,
	})
	if json {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	return l
}
