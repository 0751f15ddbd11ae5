package driven

import "errors"

// Sentinel errors shared by driven adapters.
var (
	// ErrNotFound indicates the requested row does not exist or is not owned
	// by the caller. Adapters never distinguish the two cases.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint rejected the write.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidKey is returned when the encryption key is missing or malformed.
	// It is a startup-fatal configuration error.
	ErrInvalidKey = errors.New("encryption key not configured: set DOCNEST_SECRET_KEY to a base64-encoded 32-byte key")

	// ErrDecryption is returned when a ciphertext is malformed, truncated, or
	// was sealed under a different key.
	ErrDecryption = errors.New("decryption failed")
)
