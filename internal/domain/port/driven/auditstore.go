package driven

import (
	"context"

	"github.com/ericfisherdev/docnest/internal/domain/model"
)

// AuditStore defines the driven port for the append-only audit log.
type AuditStore interface {
	Append(ctx context.Context, event model.AuditEvent) error
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]model.AuditEvent, error)
}
