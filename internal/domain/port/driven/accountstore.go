package driven

import (
	"context"

	"github.com/ericfisherdev/docnest/internal/domain/model"
)

// AccountStore defines the driven port for account persistence.
// Create returns ErrAlreadyExists when the username is taken.
// GetByID and GetByUsername return ErrNotFound when no account matches.
type AccountStore interface {
	Create(ctx context.Context, account model.Account) (model.Account, error)
	GetByID(ctx context.Context, id int64) (model.Account, error)
	GetByUsername(ctx context.Context, username string) (model.Account, error)
	Delete(ctx context.Context, id int64) error
}

// SessionStore defines the driven port for bearer-token sessions.
// Sessions are looked up by token hash, never by raw token.
type SessionStore interface {
	Create(ctx context.Context, session model.Session) (model.Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (model.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteExpired removes every session that expired before the current
	// time and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
