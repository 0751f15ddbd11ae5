package model

import "time"

// Credential is a stored website/username/password triple belonging to
// exactly one account. PasswordCiphertext is the only persisted form of the
// secret; the plaintext never lives on this struct.
type Credential struct {
	ID                 int64
	OwnerID            int64
	Website            string
	Username           string
	PasswordCiphertext string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
