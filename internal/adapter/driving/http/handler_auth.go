package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/docnest/internal/application"
)

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := application.DecodeRegisterInput(raw)
	if err != nil {
		h.writeServiceError(w, err, "failed to decode registration")
		return
	}

	account, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err, "failed to register account")
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

// Login exchanges a username and password for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			application.NonFieldErrors: {"Invalid data. Expected a dictionary."},
		})
		return
	}

	missing := map[string][]string{}
	if req.Username == nil || *req.Username == "" {
		missing["username"] = []string{"This field is required."}
	}
	if req.Password == nil || *req.Password == "" {
		missing["password"] = []string{"This field is required."}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, missing)
		return
	}

	result, err := h.accounts.Login(r.Context(), *req.Username, *req.Password)
	if errors.Is(err, application.ErrUnauthenticated) {
		writeDetail(w, http.StatusUnauthorized, detailBadLogin)
		return
	}
	if err != nil {
		h.writeServiceError(w, err, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: formatTime(result.ExpiresAt),
		User:      toAccountResponse(result.Account),
	})
}

// Logout revokes the bearer token presented with the request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, detailUnauthenticated)
		return
	}

	if err := h.accounts.Logout(r.Context(), token); err != nil {
		h.writeServiceError(w, err, "failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Profile returns the authenticated account.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Profile(r.Context(), ownerID(r))
	if err != nil {
		h.writeServiceError(w, err, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// DeleteProfile deletes the authenticated account. The body must repeat the
// account password.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password *string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			application.NonFieldErrors: {"Invalid data. Expected a dictionary."},
		})
		return
	}
	if req.Password == nil || *req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"password": {"This field is required."}})
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), ownerID(r), *req.Password); err != nil {
		h.writeServiceError(w, err, "failed to delete account", "account_id", ownerID(r))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAuditEvents returns the caller's most recent audit events. The
// optional limit query parameter is clamped by the service.
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"limit": {"A valid integer is required."}})
			return
		}
		limit = n
	}

	events, err := h.audit.List(r.Context(), ownerID(r), limit)
	if err != nil {
		h.writeServiceError(w, err, "failed to list audit events")
		return
	}

	resp := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toAuditEventResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}
