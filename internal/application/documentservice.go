package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// DocumentPayload is the write-view input for documents.
type DocumentPayload struct {
	Title *string
	Body  *string
}

// DocumentView is the read view of a document. BodyHTML is rendered on
// demand and never stored.
type DocumentView struct {
	ID        int64
	Title     string
	Body      string
	BodyHTML  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DecodeDocumentPayload parses a JSON request body into a DocumentPayload.
func DecodeDocumentPayload(raw []byte) (DocumentPayload, error) {
	fields, err := decodeStringFields(raw, "title", "body")
	if err != nil {
		return DocumentPayload{}, err
	}
	return DocumentPayload{Title: fields["title"], Body: fields["body"]}, nil
}

// DocumentService is the owner-scoped CRUD service for documents.
type DocumentService struct {
	store driven.DocumentStore
}

// NewDocumentService creates a DocumentService backed by store.
func NewDocumentService(store driven.DocumentStore) *DocumentService {
	return &DocumentService{store: store}
}

// validate cleans the title and checks the payload. The body may be empty.
func (s *DocumentService) validate(p *DocumentPayload, partial bool) error {
	if p.Title != nil {
		v := cleanLabel(*p.Title)
		p.Title = &v
	}

	verr := NewValidationError()
	checkText(verr, "title", p.Title, partial, maxLabelLen)
	return verr.errOrNil()
}

// List returns every document owned by ownerID.
func (s *DocumentService) List(ctx context.Context, ownerID int64) ([]DocumentView, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}

	docs, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]DocumentView, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentView(doc))
	}
	return out, nil
}

// Retrieve returns the document id if ownerID owns it.
func (s *DocumentService) Retrieve(ctx context.Context, ownerID, id int64) (DocumentView, error) {
	if ownerID == 0 {
		return DocumentView{}, ErrUnauthenticated
	}

	doc, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return DocumentView{}, err
	}
	return toDocumentView(doc), nil
}

// Create stores a new document owned by ownerID.
func (s *DocumentService) Create(ctx context.Context, ownerID int64, p DocumentPayload) (DocumentView, error) {
	if ownerID == 0 {
		return DocumentView{}, ErrUnauthenticated
	}
	if err := s.validate(&p, false); err != nil {
		return DocumentView{}, err
	}

	doc := model.Document{OwnerID: ownerID, Title: *p.Title}
	if p.Body != nil {
		doc.Body = *p.Body
	}

	saved, err := s.store.Create(ctx, doc)
	if err != nil {
		return DocumentView{}, fmt.Errorf("save document: %w", err)
	}
	return toDocumentView(saved), nil
}

// Update applies p to the document id owned by ownerID.
func (s *DocumentService) Update(ctx context.Context, ownerID, id int64, p DocumentPayload, partial bool) (DocumentView, error) {
	if ownerID == 0 {
		return DocumentView{}, ErrUnauthenticated
	}

	doc, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return DocumentView{}, err
	}
	if err := s.validate(&p, partial); err != nil {
		return DocumentView{}, err
	}

	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Body != nil {
		doc.Body = *p.Body
	}

	saved, err := s.store.Update(ctx, doc)
	if err != nil {
		return DocumentView{}, err
	}
	return toDocumentView(saved), nil
}

// Delete removes the document id if ownerID owns it.
func (s *DocumentService) Delete(ctx context.Context, ownerID, id int64) error {
	if ownerID == 0 {
		return ErrUnauthenticated
	}
	return s.store.Delete(ctx, ownerID, id)
}

func toDocumentView(doc model.Document) DocumentView {
	return DocumentView{
		ID:        doc.ID,
		Title:     doc.Title,
		Body:      doc.Body,
		BodyHTML:  RenderMarkdown(doc.Body),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
