package httphandler

import (
	"net/http"

	"github.com/ericfisherdev/docnest/internal/application"
)

// ListCredentials returns the caller's credentials without passwords.
func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.credentials.List(r.Context(), ownerID(r))
	if err != nil {
		h.writeServiceError(w, err, "failed to list credentials")
		return
	}

	resp := make([]CredentialResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, toCredentialResponse(s))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RetrieveCredential returns one credential with its decrypted password.
func (h *Handler) RetrieveCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	view, err := h.credentials.Retrieve(r.Context(), ownerID(r), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to retrieve credential", "credential_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialDetailResponse(view))
}

// CreateCredential stores a new credential for the caller.
func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeCredential(w, r)
	if !ok {
		return
	}

	summary, err := h.credentials.Create(r.Context(), ownerID(r), payload)
	if err != nil {
		h.writeServiceError(w, err, "failed to create credential")
		return
	}

	writeJSON(w, http.StatusCreated, toCredentialResponse(summary))
}

// ReplaceCredential handles PUT: every field is required.
func (h *Handler) ReplaceCredential(w http.ResponseWriter, r *http.Request) {
	h.updateCredential(w, r, false)
}

// PatchCredential handles PATCH: absent fields keep their stored values.
func (h *Handler) PatchCredential(w http.ResponseWriter, r *http.Request) {
	h.updateCredential(w, r, true)
}

func (h *Handler) updateCredential(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	payload, ok := h.decodeCredential(w, r)
	if !ok {
		return
	}

	summary, err := h.credentials.Update(r.Context(), ownerID(r), id, payload, partial)
	if err != nil {
		h.writeServiceError(w, err, "failed to update credential", "credential_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialResponse(summary))
}

// DeleteCredential removes one of the caller's credentials.
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	if err := h.credentials.Delete(r.Context(), ownerID(r), id); err != nil {
		h.writeServiceError(w, err, "failed to delete credential", "credential_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeCredential(w http.ResponseWriter, r *http.Request) (application.CredentialPayload, bool) {
	raw, err := readBody(w, r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return application.CredentialPayload{}, false
	}

	payload, err := application.DecodeCredentialPayload(raw)
	if err != nil {
		h.writeServiceError(w, err, "failed to decode credential")
		return application.CredentialPayload{}, false
	}
	return payload, true
}
