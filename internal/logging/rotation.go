package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationConfig controls the size-based log file rotation.
type RotationConfig struct {
	File      string
	MaxSizeMB int
	MaxFiles  int
}

// NewRotatingWriter opens a lumberjack writer for cfg.File, creating its
// directory. Zero limits default to 10 MB and 5 backups.
func NewRotatingWriter(cfg RotationConfig) (*lumberjack.Logger, error) {
	if cfg.File == "" {
		return nil, fmt.Errorf("rotation file path must not be empty")
	}

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 5
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
	}, nil
}
