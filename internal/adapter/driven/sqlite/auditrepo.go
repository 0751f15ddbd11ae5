package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AuditStore = (*AuditRepo)(nil)

// AuditRepo is the SQLite implementation of the AuditStore port interface.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a new AuditRepo backed by the given DB.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append writes one audit event.
func (r *AuditRepo) Append(ctx context.Context, event model.AuditEvent) error {
	const query = `INSERT INTO audit_events (account_id, action, target_id, created_at) VALUES (?, ?, ?, ?)`

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = nowUTC()
	}

	_, err := r.db.Writer.ExecContext(ctx, query, event.AccountID, string(event.Action), event.TargetID, fmtTime(createdAt))
	if err != nil {
		return fmt.Errorf("append audit event %s: %w", event.Action, err)
	}
	return nil
}

// ListByAccount returns up to limit of accountID's events, newest first.
func (r *AuditRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]model.AuditEvent, error) {
	const query = `
		SELECT id, account_id, action, target_id, created_at
		FROM audit_events
		WHERE account_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []model.AuditEvent
	for rows.Next() {
		var event model.AuditEvent
		var action, createdAt string
		if err := rows.Scan(&event.ID, &event.AccountID, &action, &event.TargetID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = model.AuditAction(action)
		if event.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
