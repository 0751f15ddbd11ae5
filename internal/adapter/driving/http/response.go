package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/docnest/internal/application"
	"github.com/ericfisherdev/docnest/internal/domain/model"
)

const (
	detailUnauthenticated = "Authentication credentials were not provided or are invalid."
	detailNotFound        = "Not found."
	detailInternal        = "internal server error"
	detailBadLogin        = "No active account found with the given credentials"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeDetail writes a {"detail": message} error body.
func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, detailResponse{Detail: message})
}

// detailResponse is the standard non-field error body.
type detailResponse struct {
	Detail string `json:"detail"`
}

// CredentialResponse is the write view of a stored credential. It never
// carries the password.
type CredentialResponse struct {
	ID        int64  `json:"id"`
	Website   string `json:"website"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CredentialDetailResponse is the read view returned by retrieve.
type CredentialDetailResponse struct {
	CredentialResponse
	Password string `json:"password"`
}

// DocumentResponse is the JSON representation of a document.
type DocumentResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	BodyHTML  string `json:"body_html"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AccountResponse is the public profile of an account.
type AccountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginRequest is the JSON body for the login endpoint.
type LoginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// LoginResponse carries the bearer token issued at login.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expires_at"`
	User      AccountResponse `json:"user"`
}

// AuditEventResponse is the JSON representation of an audit event.
type AuditEventResponse struct {
	ID        int64  `json:"id"`
	Action    string `json:"action"`
	TargetID  int64  `json:"target_id"`
	CreatedAt string `json:"created_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toCredentialResponse(s application.CredentialSummary) CredentialResponse {
	return CredentialResponse{
		ID:        s.ID,
		Website:   s.Website,
		Username:  s.Username,
		CreatedAt: formatTime(s.CreatedAt),
		UpdatedAt: formatTime(s.UpdatedAt),
	}
}

func toCredentialDetailResponse(v application.CredentialView) CredentialDetailResponse {
	return CredentialDetailResponse{
		CredentialResponse: toCredentialResponse(v.CredentialSummary),
		Password:           v.Password,
	}
}

func toDocumentResponse(d application.DocumentView) DocumentResponse {
	return DocumentResponse{
		ID:        d.ID,
		Title:     d.Title,
		Body:      d.Body,
		BodyHTML:  d.BodyHTML,
		CreatedAt: formatTime(d.CreatedAt),
		UpdatedAt: formatTime(d.UpdatedAt),
	}
}

func toAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{ID: a.ID, Username: a.Username, Email: a.Email}
}

func toAuditEventResponse(e model.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:        e.ID,
		Action:    string(e.Action),
		TargetID:  e.TargetID,
		CreatedAt: formatTime(e.CreatedAt),
	}
}
