package httphandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/docnest/internal/application"
)

// maxBodyBytes caps request bodies read by the JSON endpoints.
const maxBodyBytes = 1 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	credentials *application.CredentialService
	documents   *application.DocumentService
	accounts    *application.AccountService
	audit       *application.AuditService
	pinger      Pinger
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. pinger may be
// nil, in which case Health reports ok without probing storage.
func NewHandler(
	credentials *application.CredentialService,
	documents *application.DocumentService,
	accounts *application.AccountService,
	audit *application.AuditService,
	pinger Pinger,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		credentials: credentials,
		documents:   documents,
		accounts:    accounts,
		audit:       audit,
		pinger:      pinger,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging, metrics, and recovery middleware. metrics and metricsHandler
// may be nil.
func NewServeMux(h *Handler, logger *slog.Logger, metrics RequestMetrics, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	handle(mux, "POST /api/v1/auth/register/", http.HandlerFunc(h.Register))
	handle(mux, "POST /api/v1/auth/login/", http.HandlerFunc(h.Login))
	handle(mux, "POST /api/v1/auth/logout/", http.HandlerFunc(h.Logout))
	handle(mux, "GET /api/v1/auth/profile/", h.requireAuth(h.Profile))
	handle(mux, "DELETE /api/v1/auth/profile/", h.requireAuth(h.DeleteProfile))

	handle(mux, "GET /api/v1/passwords/", h.requireAuth(h.ListCredentials))
	handle(mux, "POST /api/v1/passwords/", h.requireAuth(h.CreateCredential))
	handle(mux, "GET /api/v1/passwords/{id}/", h.requireAuth(h.RetrieveCredential))
	handle(mux, "PUT /api/v1/passwords/{id}/", h.requireAuth(h.ReplaceCredential))
	handle(mux, "PATCH /api/v1/passwords/{id}/", h.requireAuth(h.PatchCredential))
	handle(mux, "DELETE /api/v1/passwords/{id}/", h.requireAuth(h.DeleteCredential))

	handle(mux, "GET /api/v1/documents/", h.requireAuth(h.ListDocuments))
	handle(mux, "POST /api/v1/documents/", h.requireAuth(h.CreateDocument))
	handle(mux, "GET /api/v1/documents/{id}/", h.requireAuth(h.RetrieveDocument))
	handle(mux, "PUT /api/v1/documents/{id}/", h.requireAuth(h.ReplaceDocument))
	handle(mux, "PATCH /api/v1/documents/{id}/", h.requireAuth(h.PatchDocument))
	handle(mux, "DELETE /api/v1/documents/{id}/", h.requireAuth(h.DeleteDocument))

	handle(mux, "GET /api/v1/audit/", h.requireAuth(h.ListAuditEvents))

	mux.HandleFunc("GET /api/v1/health", h.Health)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	if metrics != nil {
		wrapped = metricsMiddleware(metrics, wrapped)
	}
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// handle registers a trailing-slash pattern for the exact path and for the
// same path without the slash.
func handle(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern+"{$}", h)
	mux.Handle(strings.TrimSuffix(pattern, "/"), h)
}

// Health reports service liveness and, when configured, storage reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			h.logger.Error("health check ping failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Time: now})
			return
		}
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Time: now})
}

// ownerID returns the id of the account requireAuth attached to r.
func ownerID(r *http.Request) int64 {
	account, _ := accountFromContext(r.Context())
	return account.ID
}

// pathID parses the {id} path value. Non-numeric ids are treated as absent.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return raw, nil
}

// writeServiceError maps application errors onto HTTP responses. Anything
// unrecognized is logged and reported as a 500 without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, application.ErrUnauthenticated):
		writeDetail(w, http.StatusUnauthorized, detailUnauthenticated)
	case errors.Is(err, application.ErrNotFound):
		writeDetail(w, http.StatusNotFound, detailNotFound)
	default:
		h.logger.Error(msg, append(attrs, "error", err)...)
		writeDetail(w, http.StatusInternalServerError, detailInternal)
	}
}
