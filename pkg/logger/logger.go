// Package logger configures the process-wide slog default logger.
//
// The engine and CLI log through slog's package-level functions; this
// package only decides where those lines go (stdout/stderr/rotated file),
// in which format, and at which level, and builds the per-run logger that
// carries the run id and algorithm every engine line is tagged with.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation bounds a log file before lumberjack rolls it over.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Config controls output destination, format and level.
type Config struct {
	Level    string // debug, info, warn, error
	Format   string // json (default), text
	Output   string // stdout (default), stderr, file
	FilePath string // used when Output is "file"
	Rotation Rotation
}

// Init installs a JSON stdout logger at the given level as the slog
// default. Shorthand for the common case.
func Init(level string) {
	InitWithConfig(Config{Level: level})
}

// InitWithConfig builds a handler from the configuration and installs it
// as the slog default, so slog.Info etc. pick it up everywhere.
func InitWithConfig(cfg Config) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	w := cfg.writer()

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

// parseLevel understands slog's textual level names; anything else (or
// empty) means info.
func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if s == "" || lvl.UnmarshalText([]byte(s)) != nil {
		return slog.LevelInfo
	}
	return lvl
}

// writer resolves the output destination. File output goes through
// lumberjack for rotation; an uncreatable log directory falls back to
// stdout rather than failing startup.
func (cfg Config) writer() io.Writer {
	switch cfg.Output {
	case "stderr":
		return os.Stderr
	case "file":
		path := cfg.FilePath
		if path == "" {
			path = "logs/gaspipe.log"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return os.Stdout
		}
		return &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.Rotation.MaxSizeMB,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAgeDays,
			Compress:   cfg.Rotation.Compress,
		}
	default:
		return os.Stdout
	}
}

// Run returns the logger for one optimization run, tagged with the run id
// and algorithm name.
func Run(runID, algorithm string) *slog.Logger {
	return slog.Default().With("run_id", runID, "algorithm", algorithm)
}
