package httphandler

import (
	"net/http"

	"github.com/ericfisherdev/docnest/internal/application"
)

// ListDocuments returns the caller's documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List(r.Context(), ownerID(r))
	if err != nil {
		h.writeServiceError(w, err, "failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, toDocumentResponse(d))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RetrieveDocument returns one of the caller's documents.
func (h *Handler) RetrieveDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	doc, err := h.documents.Retrieve(r.Context(), ownerID(r), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to retrieve document", "document_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// CreateDocument stores a new document for the caller.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}

	doc, err := h.documents.Create(r.Context(), ownerID(r), payload)
	if err != nil {
		h.writeServiceError(w, err, "failed to create document")
		return
	}

	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

// ReplaceDocument handles PUT on a document.
func (h *Handler) ReplaceDocument(w http.ResponseWriter, r *http.Request) {
	h.updateDocument(w, r, false)
}

// PatchDocument handles PATCH on a document.
func (h *Handler) PatchDocument(w http.ResponseWriter, r *http.Request) {
	h.updateDocument(w, r, true)
}

func (h *Handler) updateDocument(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	payload, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}

	doc, err := h.documents.Update(r.Context(), ownerID(r), id, payload, partial)
	if err != nil {
		h.writeServiceError(w, err, "failed to update document", "document_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// DeleteDocument removes one of the caller's documents.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	if err := h.documents.Delete(r.Context(), ownerID(r), id); err != nil {
		h.writeServiceError(w, err, "failed to delete document", "document_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeDocument(w http.ResponseWriter, r *http.Request) (application.DocumentPayload, bool) {
	raw, err := readBody(w, r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return application.DocumentPayload{}, false
	}

	payload, err := application.DecodeDocumentPayload(raw)
	if err != nil {
		h.writeServiceError(w, err, "failed to decode document")
		return application.DocumentPayload{}, false
	}
	return payload, true
}
