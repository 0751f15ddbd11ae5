package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/docnest/internal/application"
	"github.com/ericfisherdev/docnest/internal/domain/model"
)

// RequestMetrics observes completed HTTP requests. route is the matched
// ServeMux pattern, or "unmatched".
type RequestMetrics interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type accountKey struct{}

// accountFromContext returns the authenticated account stored by requireAuth.
func accountFromContext(ctx context.Context) (model.Account, bool) {
	account, ok := ctx.Value(accountKey{}).(model.Account)
	return account, ok
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// metricsMiddleware reports each request to m. The route label comes from
// the pattern ServeMux matched, so ids in the path do not explode cardinality.
func metricsMiddleware(m RequestMetrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(r.Method, route, sw.status, time.Since(start))
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
				)
				writeDetail(w, http.StatusInternalServerError, detailInternal)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requireAuth resolves the bearer token to an account and stores it in the
// request context. Missing, unknown, and expired tokens get a 401.
func (h *Handler) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, detailUnauthenticated)
			return
		}

		account, err := h.accounts.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, application.ErrUnauthenticated) {
				h.logger.Error("failed to authenticate request", "error", err)
				writeDetail(w, http.StatusInternalServerError, detailInternal)
				return
			}
			writeDetail(w, http.StatusUnauthorized, detailUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey{}, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
