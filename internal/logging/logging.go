// Package logging builds the process logger: a readable console writer,
// an optional JSON file sink, or both.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// timeFormat keeps timestamps short and sortable.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config mirrors the logging section of the tool configuration.
type Config struct {
	Level   string
	Console bool
	File    FileConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// New builds the root logger. The returned closer releases the file sink,
// if one was opened; call it before exit.
//
// A file sink that cannot be opened is reported on stderr and skipped
// rather than aborting the run.
func New(cfg Config) (zerolog.Logger, func() error) {
	zerolog.TimeFieldFormat = timeFormat
	zerolog.ErrorFieldName = "err"

	writers := make([]io.Writer, 0, 2)
	if cfg.Console {
		writers = append(writers, consoleWriter(os.Stdout))
	}

	var file *os.File
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging: failed opening log file %q: %v\n", path, err)
		} else {
			file = f
			writers = append(writers, zerolog.SyncWriter(f))
		}
	}

	// With every sink turned off, keep the console anyway so failures
	// stay visible.
	if len(writers) == 0 {
		writers = append(writers, consoleWriter(os.Stdout))
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(cfg.Level, zerolog.InfoLevel)).
		With().Timestamp().Logger()

	closer := func() error { return nil }
	if file != nil {
		closer = file.Close
	}
	return log, closer
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
}

func parseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return def
	}
}
