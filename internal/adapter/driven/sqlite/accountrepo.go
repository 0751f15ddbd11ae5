package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountStore = (*AccountRepo)(nil)

// AccountRepo is the SQLite implementation of the AccountStore port interface.
type AccountRepo struct {
	db *DB
}

// NewAccountRepo creates a new AccountRepo backed by the given DB.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Create inserts a new account. Usernames are unique case-insensitively.
func (r *AccountRepo) Create(ctx context.Context, account model.Account) (model.Account, error) {
	const query = `INSERT INTO accounts (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

	now := nowUTC()
	result, err := r.db.Writer.ExecContext(ctx, query, account.Username, account.Email, account.PasswordHash, fmtTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Account{}, fmt.Errorf("create account %q: %w", account.Username, driven.ErrAlreadyExists)
		}
		return model.Account{}, fmt.Errorf("create account %q: %w", account.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Account{}, fmt.Errorf("read account id: %w", err)
	}

	account.ID = id
	account.CreatedAt = now
	return account, nil
}

// GetByID returns the account with the given id.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (model.Account, error) {
	const query = `SELECT id, username, email, password_hash, created_at FROM accounts WHERE id = ?`

	account, err := scanAccount(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("get account %d: %w", id, driven.ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	return account, nil
}

// GetByUsername returns the account whose username matches case-insensitively.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	const query = `SELECT id, username, email, password_hash, created_at FROM accounts WHERE username = ?`

	account, err := scanAccount(r.db.Reader.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("get account %q: %w", username, driven.ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("get account %q: %w", username, err)
	}
	return account, nil
}

// Delete removes an account. Owned credentials, documents, sessions and audit
// events are removed by ON DELETE CASCADE.
func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM accounts WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete account %d: %w", id, driven.ErrNotFound)
	}
	return nil
}

func scanAccount(s scanner) (model.Account, error) {
	var account model.Account
	var createdAt string

	if err := s.Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash, &createdAt); err != nil {
		return model.Account{}, err
	}

	var err error
	if account.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Account{}, fmt.Errorf("parse created_at: %w", err)
	}
	return account, nil
}
