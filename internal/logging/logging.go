// Package logging builds the process logger: JSON slog output with sensitive
// attributes redacted and an optional rotating file sink.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// nopCloser is returned when no file sink was opened.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a redacting JSON logger at level. Output goes to stderr and, when
// file is non-empty, also to a rotating log file. The returned Closer releases
// the file sink.
func New(level slog.Level, file string) (*slog.Logger, io.Closer, error) {
	return newLogger(os.Stderr, level, file)
}

func newLogger(console io.Writer, level slog.Level, file string) (*slog.Logger, io.Closer, error) {
	out := console
	var closer io.Closer = nopCloser{}

	if file != "" {
		writer, err := NewRotatingWriter(RotationConfig{File: file})
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(console, writer)
		closer = writer
	}

	inner := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(inner)), closer, nil
}
