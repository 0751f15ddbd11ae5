package driven

// Cipher performs authenticated symmetric encryption with a single
// process-wide key. Implementations must be safe for concurrent use.
type Cipher interface {
	// Encrypt seals plaintext under a fresh nonce and returns a text encoding
	// of the result. Two calls with the same plaintext yield different output.
	Encrypt(plaintext string) (string, error)

	// Decrypt reverses Encrypt. Returns ErrDecryption for malformed or
	// tampered input, or input sealed under another key.
	Decrypt(ciphertext string) (string, error)
}

// PasswordHasher derives and verifies one-way account password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) (bool, error)
}
