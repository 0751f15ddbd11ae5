package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// CredentialMetrics receives counters from CredentialService. A nil value is
// allowed and disables counting.
type CredentialMetrics interface {
	CredentialRevealed()
	DecryptionFailed()
}

// CredentialService enforces per-owner visibility over stored credentials and
// dispatches each operation to the matching codec view.
type CredentialService struct {
	store   driven.CredentialStore
	codec   *CredentialCodec
	audit   *AuditService
	metrics CredentialMetrics
	logger  *slog.Logger
}

// NewCredentialService creates a CredentialService. audit and metrics may be nil.
func NewCredentialService(
	store driven.CredentialStore,
	codec *CredentialCodec,
	audit *AuditService,
	metrics CredentialMetrics,
	logger *slog.Logger,
) *CredentialService {
	return &CredentialService{
		store:   store,
		codec:   codec,
		audit:   audit,
		metrics: metrics,
		logger:  logger,
	}
}

// List returns the write view of every credential owned by ownerID.
func (s *CredentialService) List(ctx context.Context, ownerID int64) ([]CredentialSummary, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}

	records, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]CredentialSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, s.codec.Summary(rec))
	}
	return out, nil
}

// Retrieve returns the read view, including the decrypted password, of the
// credential id if ownerID owns it.
func (s *CredentialService) Retrieve(ctx context.Context, ownerID, id int64) (CredentialView, error) {
	if ownerID == 0 {
		return CredentialView{}, ErrUnauthenticated
	}

	rec, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return CredentialView{}, err
	}

	view, err := s.codec.Reveal(rec)
	if err != nil {
		if errors.Is(err, driven.ErrDecryption) {
			s.logger.Error("credential decryption failed", "credential_id", rec.ID, "owner_id", ownerID)
			if s.metrics != nil {
				s.metrics.DecryptionFailed()
			}
		}
		return CredentialView{}, err
	}

	if s.metrics != nil {
		s.metrics.CredentialRevealed()
	}
	s.audit.Record(ctx, ownerID, model.AuditCredentialReveal, rec.ID)

	return view, nil
}

// Create binds a new credential to ownerID, ignoring any owner in the payload.
func (s *CredentialService) Create(ctx context.Context, ownerID int64, p CredentialPayload) (CredentialSummary, error) {
	if ownerID == 0 {
		return CredentialSummary{}, ErrUnauthenticated
	}

	rec, err := s.codec.NewRecord(ownerID, p)
	if err != nil {
		return CredentialSummary{}, err
	}

	saved, err := s.store.Create(ctx, rec)
	if err != nil {
		return CredentialSummary{}, fmt.Errorf("save credential: %w", err)
	}

	s.audit.Record(ctx, ownerID, model.AuditCredentialCreate, saved.ID)
	return s.codec.Summary(saved), nil
}

// Update applies p to the credential id owned by ownerID. partial selects
// PATCH semantics; otherwise every field must be supplied.
func (s *CredentialService) Update(ctx context.Context, ownerID, id int64, p CredentialPayload, partial bool) (CredentialSummary, error) {
	if ownerID == 0 {
		return CredentialSummary{}, ErrUnauthenticated
	}

	rec, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return CredentialSummary{}, err
	}

	updated, err := s.codec.Apply(rec, p, partial)
	if err != nil {
		return CredentialSummary{}, err
	}

	saved, err := s.store.Update(ctx, updated)
	if err != nil {
		return CredentialSummary{}, err
	}

	s.audit.Record(ctx, ownerID, model.AuditCredentialUpdate, saved.ID)
	return s.codec.Summary(saved), nil
}

// Delete removes the credential id if ownerID owns it.
func (s *CredentialService) Delete(ctx context.Context, ownerID, id int64) error {
	if ownerID == 0 {
		return ErrUnauthenticated
	}

	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.audit.Record(ctx, ownerID, model.AuditCredentialDelete, id)
	return nil
}
