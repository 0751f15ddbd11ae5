package model

import "time"

// Account is a registered user. PasswordHash is an argon2id PHC string.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
