// Package logging wraps zerolog the way the teacher's logger.go does,
// adding the daily UTC file rollover the ingestion service needs that the
// teacher's stdout-only logger never had to.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors the four severities the message-processing pipeline names
// (spec §7): the teacher also has Fatal, but nothing in this service calls
// it outside of startup failures, where zerolog's own Fatal is used
// directly.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the zerolog output encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

// Config configures New.
type Config struct {
	Level  Level
	Format Format
	Dir    string // directory for the rolling log file; "" disables file output
}

// New creates a structured logger writing to stdout and, when cfg.Dir is
// set, to a daily-rolling file under that directory.
func New(cfg Config) zerolog.Logger {
	var level zerolog.Level
	switch cfg.Level {
	case LevelDebug:
		level = zerolog.DebugLevel
	case LevelWarn:
		level = zerolog.WarnLevel
	case LevelError:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var stdout io.Writer = os.Stdout
	if cfg.Format == FormatPretty {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	writer := io.Writer(stdout)
	if cfg.Dir != "" {
		writer = io.MultiWriter(stdout, newRollingFile(cfg.Dir))
	}

	return zerolog.New(writer).With().Timestamp().Caller().Str("service", "ingestd").Logger()
}

// rollingFile reopens logs/app_YYYYMMDD.log the first time a write crosses
// a UTC midnight boundary since the previous write.
type rollingFile struct {
	mu      sync.Mutex
	dir     string
	day     string
	file    *os.File
}

func newRollingFile(dir string) *rollingFile {
	return &rollingFile{dir: dir}
}

func (r *rollingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := time.Now().UTC().Format("20060102")
	if day != r.day || r.file == nil {
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			return 0, fmt.Errorf("logging: create dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(r.dir, "app_"+day+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, fmt.Errorf("logging: open log file: %w", err)
		}
		if r.file != nil {
			_ = r.file.Close()
		}
		r.file = f
		r.day = day
	}
	return r.file.Write(p)
}

// LogError logs an error with contextual fields, mirroring the teacher's
// LogError helper.
func LogError(logger zerolog.Logger, err error, msg string, fields map[string]interface{}) {
	event := logger.Error().Err(err)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

// LogErrorWithStack logs an error together with the current stack trace,
// for unexpected failures and recovered panics.
func LogErrorWithStack(logger zerolog.Logger, err error, msg string, fields map[string]interface{}) {
	event := logger.Error().Err(err).Str("stack_trace", string(debug.Stack()))
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}
