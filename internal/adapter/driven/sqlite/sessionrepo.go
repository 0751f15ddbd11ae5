package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port interface.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a session, assigning a random UUID when session.ID is empty.
func (r *SessionRepo) Create(ctx context.Context, session model.Session) (model.Session, error) {
	const query = `INSERT INTO sessions (id, account_id, token_hash, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = nowUTC()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		session.ID, session.AccountID, session.TokenHash, fmtTime(session.CreatedAt), fmtTime(session.ExpiresAt),
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("create session for account %d: %w", session.AccountID, err)
	}

	return session, nil
}

// GetByTokenHash returns the session for tokenHash. Expiry is not checked here.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (model.Session, error) {
	const query = `SELECT id, account_id, token_hash, created_at, expires_at FROM sessions WHERE token_hash = ?`

	var s model.Session
	var createdAt, expiresAt string
	err := r.db.Reader.QueryRowContext(ctx, query, tokenHash).Scan(&s.ID, &s.AccountID, &s.TokenHash, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, fmt.Errorf("get session: %w", driven.ErrNotFound)
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("get session: %w", err)
	}

	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	if s.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return model.Session{}, fmt.Errorf("parse expires_at: %w", err)
	}

	return s, nil
}

// DeleteByTokenHash removes the session for tokenHash. Deleting an unknown
// session is not an error.
func (r *SessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	const query = `DELETE FROM sessions WHERE token_hash = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expires_at is in the past.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= ?`

	result, err := r.db.Writer.ExecContext(ctx, query, fmtTime(nowUTC()))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return rows, nil
}
