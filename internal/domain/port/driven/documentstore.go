package driven

import (
	"context"

	"github.com/ericfisherdev/docnest/internal/domain/model"
)

// DocumentStore defines the driven port for document persistence. It follows
// the same owner-scoping rules as CredentialStore.
type DocumentStore interface {
	Create(ctx context.Context, doc model.Document) (model.Document, error)
	Get(ctx context.Context, ownerID, id int64) (model.Document, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Document, error)
	Update(ctx context.Context, doc model.Document) (model.Document, error)
	Delete(ctx context.Context, ownerID, id int64) error
}
