package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// NonFieldErrors is the ValidationError key for problems not tied to one field.
const NonFieldErrors = "non_field_errors"

// Validation messages shared by the payload codecs.
const (
	msgRequired  = "This field is required."
	msgBlank     = "This field may not be blank."
	msgNull      = "This field may not be null."
	msgNotString = "Not a valid string."
	msgNotObject = "Invalid data. Expected a dictionary."
)

var (
	// ErrUnauthenticated is returned when the caller has no valid identity.
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")

	// ErrNotFound aliases the port sentinel so callers need only this package.
	// Missing and foreign-owned objects both produce it.
	ErrNotFound = driven.ErrNotFound

	// ErrDecryption aliases the port sentinel for ciphertext failures.
	ErrDecryption = driven.ErrDecryption
)

// ValidationError carries per-field messages for rejected input. It is
// raised before any persistence or cryptographic work happens.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends msg to field's messages.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field has at least one message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Error formats fields in sorted order so messages are stable.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// errOrNil returns e as an error only when it holds messages.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
