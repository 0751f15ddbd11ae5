// Package hasher derives and verifies account password hashes with argon2id.
package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

var (
	ErrInvalidParams = errors.New("invalid argon2 parameters")
	ErrInvalidHash   = errors.New("invalid argon2id hash encoding")
)

// Compile-time interface satisfaction check.
var _ driven.PasswordHasher = (*Argon2)(nil)

// Params tunes argon2id. Memory is in KiB.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     int
	KeyLen      uint32
}

// DefaultParams follows the OWASP argon2id baseline.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLen:     16,
		KeyLen:      32,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Memory < 8*uint32(p.Parallelism):
		return fmt.Errorf("%w: memory must be >= 8*parallelism KiB", ErrInvalidParams)
	case p.Iterations == 0:
		return fmt.Errorf("%w: iterations must be > 0", ErrInvalidParams)
	case p.Parallelism == 0:
		return fmt.Errorf("%w: parallelism must be > 0", ErrInvalidParams)
	case p.SaltLen < 16:
		return fmt.Errorf("%w: salt length must be >= 16", ErrInvalidParams)
	case p.KeyLen < 16:
		return fmt.Errorf("%w: key length must be >= 16", ErrInvalidParams)
	default:
		return nil
	}
}

// Argon2 hashes passwords into PHC strings:
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<hash>
type Argon2 struct {
	params Params
}

// New returns an Argon2 hasher using params for new hashes. Verification
// always uses the parameters embedded in the stored hash.
func New(params Params) (*Argon2, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Argon2{params: params}, nil
}

// Hash derives a fresh salted hash of password.
func (h *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash. A malformed hash is an
// error; a mismatch is (false, nil).
func (h *Argon2) Verify(encodedHash, password string) (bool, error) {
	params, salt, want, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func decodeHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: version: %v", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidHash, version)
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: params: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: key", ErrInvalidHash)
	}

	return p, salt, key, nil
}
