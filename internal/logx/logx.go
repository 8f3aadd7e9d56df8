package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the run logger.
type Options struct {
	Level   string
	Console io.Writer
	// LogsDir, when set, receives a timestamped JSON log file per run.
	LogsDir string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger writing human-readable lines to Console and JSON lines
// to a timestamped file inside LogsDir. The returned closer should be closed
// when logging is no longer needed.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.Kitchen})
	}

	var closer io.Closer = nopCloser{}
	if opts.LogsDir != "" {
		if err := os.MkdirAll(opts.LogsDir, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("ensure logs directory: %w", err)
		}
		filename := time.Now().Format("20060102-150405") + ".log"
		file, err := os.OpenFile(filepath.Join(opts.LogsDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, file)
		closer = file
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}
