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
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// It stores password_ciphertext exactly as given; encryption happens above it.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

const credentialColumns = `id, owner_id, website, username, password_ciphertext, created_at, updated_at`

// Create inserts a new credential row.
func (r *CredentialRepo) Create(ctx context.Context, cred model.Credential) (model.Credential, error) {
	const query = `
		INSERT INTO passwords (owner_id, website, username, password_ciphertext, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := nowUTC()
	result, err := r.db.Writer.ExecContext(ctx, query,
		cred.OwnerID, cred.Website, cred.Username, cred.PasswordCiphertext, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return model.Credential{}, fmt.Errorf("create credential for owner %d: %w", cred.OwnerID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Credential{}, fmt.Errorf("read credential id: %w", err)
	}

	cred.ID = id
	cred.CreatedAt = now
	cred.UpdatedAt = now
	return cred, nil
}

// Get returns the credential with id owned by ownerID.
func (r *CredentialRepo) Get(ctx context.Context, ownerID, id int64) (model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM passwords WHERE id = ? AND owner_id = ?`

	cred, err := scanCredential(r.db.Reader.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Credential{}, fmt.Errorf("get credential %d: %w", id, driven.ErrNotFound)
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("get credential %d: %w", id, err)
	}

	return cred, nil
}

// ListByOwner returns every credential owned by ownerID ordered by id.
func (r *CredentialRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM passwords WHERE owner_id = ? ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// Update overwrites the mutable columns of the credential matching both
// cred.ID and cred.OwnerID. owner_id itself is never written.
func (r *CredentialRepo) Update(ctx context.Context, cred model.Credential) (model.Credential, error) {
	const query = `
		UPDATE passwords
		SET website = ?, username = ?, password_ciphertext = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	now := nowUTC()
	result, err := r.db.Writer.ExecContext(ctx, query,
		cred.Website, cred.Username, cred.PasswordCiphertext, fmtTime(now), cred.ID, cred.OwnerID,
	)
	if err != nil {
		return model.Credential{}, fmt.Errorf("update credential %d: %w", cred.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return model.Credential{}, fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return model.Credential{}, fmt.Errorf("update credential %d: %w", cred.ID, driven.ErrNotFound)
	}

	cred.UpdatedAt = now
	return cred, nil
}

// Delete removes the credential with id owned by ownerID.
func (r *CredentialRepo) Delete(ctx context.Context, ownerID, id int64) error {
	const query = `DELETE FROM passwords WHERE id = ? AND owner_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete credential %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete credential %d: %w", id, driven.ErrNotFound)
	}

	return nil
}

func scanCredential(s scanner) (model.Credential, error) {
	var cred model.Credential
	var createdAt, updatedAt string

	err := s.Scan(&cred.ID, &cred.OwnerID, &cred.Website, &cred.Username, &cred.PasswordCiphertext, &createdAt, &updatedAt)
	if err != nil {
		return model.Credential{}, err
	}

	if cred.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Credential{}, fmt.Errorf("parse created_at: %w", err)
	}
	if cred.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Credential{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return cred, nil
}
