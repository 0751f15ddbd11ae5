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
var _ driven.DocumentStore = (*DocumentRepo)(nil)

// DocumentRepo is the SQLite implementation of the DocumentStore port interface.
type DocumentRepo struct {
	db *DB
}

// NewDocumentRepo creates a new DocumentRepo backed by the given DB.
func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = `id, owner_id, title, body, created_at, updated_at`

// Create inserts a new document row.
func (r *DocumentRepo) Create(ctx context.Context, doc model.Document) (model.Document, error) {
	const query = `INSERT INTO documents (owner_id, title, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	now := nowUTC()
	result, err := r.db.Writer.ExecContext(ctx, query, doc.OwnerID, doc.Title, doc.Body, fmtTime(now), fmtTime(now))
	if err != nil {
		return model.Document{}, fmt.Errorf("create document for owner %d: %w", doc.OwnerID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Document{}, fmt.Errorf("read document id: %w", err)
	}

	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return doc, nil
}

// Get returns the document with id owned by ownerID.
func (r *DocumentRepo) Get(ctx context.Context, ownerID, id int64) (model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ? AND owner_id = ?`

	doc, err := scanDocument(r.db.Reader.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, fmt.Errorf("get document %d: %w", id, driven.ErrNotFound)
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("get document %d: %w", id, err)
	}

	return doc, nil
}

// ListByOwner returns every document owned by ownerID ordered by id.
func (r *DocumentRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = ? ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// Update overwrites title and body of the document matching doc.ID and doc.OwnerID.
func (r *DocumentRepo) Update(ctx context.Context, doc model.Document) (model.Document, error) {
	const query = `UPDATE documents SET title = ?, body = ?, updated_at = ? WHERE id = ? AND owner_id = ?`

	now := nowUTC()
	result, err := r.db.Writer.ExecContext(ctx, query, doc.Title, doc.Body, fmtTime(now), doc.ID, doc.OwnerID)
	if err != nil {
		return model.Document{}, fmt.Errorf("update document %d: %w", doc.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return model.Document{}, fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return model.Document{}, fmt.Errorf("update document %d: %w", doc.ID, driven.ErrNotFound)
	}

	doc.UpdatedAt = now
	return doc, nil
}

// Delete removes the document with id owned by ownerID.
func (r *DocumentRepo) Delete(ctx context.Context, ownerID, id int64) error {
	const query = `DELETE FROM documents WHERE id = ? AND owner_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete document %d: %w", id, driven.ErrNotFound)
	}

	return nil
}

func scanDocument(s scanner) (model.Document, error) {
	var doc model.Document
	var createdAt, updatedAt string

	if err := s.Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.Body, &createdAt, &updatedAt); err != nil {
		return model.Document{}, err
	}

	var err error
	if doc.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Document{}, fmt.Errorf("parse created_at: %w", err)
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Document{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return doc, nil
}
