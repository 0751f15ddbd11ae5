package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Redacted replaces the value of any sensitive attribute.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"password":            {},
	"password_ciphertext": {},
	"ciphertext":          {},
	"plaintext":           {},
	"secret":              {},
	"secret_key":          {},
	"token":               {},
	"authorization":       {},
	"password_hash":       {},
}

// RedactingHandler wraps another slog.Handler and masks sensitive attribute
// values, including those nested in groups or produced by slog.LogValuer.
type RedactingHandler struct {
	inner slog.Handler
}

// NewRedactingHandler returns a handler that redacts before delegating to inner.
func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fallback := slog.NewRecord(record.Time, slog.LevelError, "redaction handler panic recovered", record.PC)
			fallback.AddAttrs(slog.String("panic", Redacted))
			err = h.inner.Handle(ctx, fallback)
		}
	}()

	redacted := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		redacted.AddAttrs(redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, redacted)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		redacted = append(redacted, redactAttr(attr))
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(redacted)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

// IsSensitive reports whether values logged under key are masked.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

func redactAttr(attr slog.Attr) slog.Attr {
	if IsSensitive(attr.Key) {
		return slog.String(attr.Key, Redacted)
	}

	value := attr.Value.Resolve()
	if value.Kind() != slog.KindGroup {
		return slog.Attr{Key: attr.Key, Value: value}
	}

	group := value.Group()
	redacted := make([]slog.Attr, 0, len(group))
	for _, nested := range group {
		redacted = append(redacted, redactAttr(nested))
	}
	return slog.Attr{Key: attr.Key, Value: slog.GroupValue(redacted...)}
}
