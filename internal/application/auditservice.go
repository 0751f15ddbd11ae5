package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

// AuditService appends security events and lists them back to their owner.
// A nil *AuditService is valid and records nothing.
type AuditService struct {
	store  driven.AuditStore
	logger *slog.Logger
}

// NewAuditService creates an AuditService backed by store.
func NewAuditService(store driven.AuditStore, logger *slog.Logger) *AuditService {
	return &AuditService{store: store, logger: logger}
}

// Record appends an event. Failures are logged and never returned, so an
// audit outage does not block the user's operation.
func (s *AuditService) Record(ctx context.Context, accountID int64, action model.AuditAction, targetID int64) {
	if s == nil {
		return
	}

	event := model.AuditEvent{AccountID: accountID, Action: action, TargetID: targetID}
	if err := s.store.Append(ctx, event); err != nil {
		s.logger.Error("audit append failed", "action", string(action), "account_id", accountID, "target_id", targetID, "error", err)
	}
}

// List returns accountID's most recent events. limit is clamped to
// [1, 500]; zero or negative selects the default of 100.
func (s *AuditService) List(ctx context.Context, accountID int64, limit int) ([]model.AuditEvent, error) {
	if accountID == 0 {
		return nil, ErrUnauthenticated
	}
	if s == nil {
		return nil, nil
	}

	switch {
	case limit <= 0:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}

	return s.store.ListByAccount(ctx, accountID, limit)
}
