package driven

import (
	"context"

	"github.com/ericfisherdev/docnest/internal/domain/model"
)

// CredentialStore defines the driven port for credential persistence.
// Every read and write is scoped to an owner; a record owned by someone else
// is indistinguishable from a missing one (ErrNotFound). The store only ever
// sees ciphertext.
type CredentialStore interface {
	// Create inserts a new record and returns it with ID and timestamps set.
	Create(ctx context.Context, cred model.Credential) (model.Credential, error)

	// Get returns the record with id if it belongs to ownerID.
	Get(ctx context.Context, ownerID, id int64) (model.Credential, error)

	// ListByOwner returns all of ownerID's records ordered by id.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Credential, error)

	// Update overwrites website, username and ciphertext of the record
	// matching cred.ID and cred.OwnerID.
	Update(ctx context.Context, cred model.Credential) (model.Credential, error)

	// Delete removes the record with id if it belongs to ownerID.
	Delete(ctx context.Context, ownerID, id int64) error
}
