package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/docnest/internal/adapter/driven/cipher"
	"github.com/ericfisherdev/docnest/internal/adapter/driven/hasher"
	httphandler "github.com/ericfisherdev/docnest/internal/adapter/driving/http"
	"github.com/ericfisherdev/docnest/internal/application"
	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockCredentialStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Credential
}

func (m *mockCredentialStore) Create(_ context.Context, c model.Credential) (model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	m.rows[c.ID] = c
	return c, nil
}

func (m *mockCredentialStore) Get(_ context.Context, ownerID, id int64) (model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.OwnerID != ownerID {
		return model.Credential{}, driven.ErrNotFound
	}
	return c, nil
}

func (m *mockCredentialStore) ListByOwner(_ context.Context, ownerID int64) ([]model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Credential
	for _, c := range m.rows {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCredentialStore) Update(_ context.Context, c model.Credential) (model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rows[c.ID]
	if !ok || existing.OwnerID != c.OwnerID {
		return model.Credential{}, driven.ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	m.rows[c.ID] = c
	return c, nil
}

func (m *mockCredentialStore) Delete(_ context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.OwnerID != ownerID {
		return driven.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type mockDocumentStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Document
}

func (m *mockDocumentStore) Create(_ context.Context, d model.Document) (model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d.ID = m.nextID
	m.rows[d.ID] = d
	return d, nil
}

func (m *mockDocumentStore) Get(_ context.Context, ownerID, id int64) (model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok || d.OwnerID != ownerID {
		return model.Document{}, driven.ErrNotFound
	}
	return d, nil
}

func (m *mockDocumentStore) ListByOwner(_ context.Context, ownerID int64) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Document
	for _, d := range m.rows {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDocumentStore) Update(_ context.Context, d model.Document) (model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rows[d.ID]
	if !ok || existing.OwnerID != d.OwnerID {
		return model.Document{}, driven.ErrNotFound
	}
	m.rows[d.ID] = d
	return d, nil
}

func (m *mockDocumentStore) Delete(_ context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok || d.OwnerID != ownerID {
		return driven.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type mockAccountStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Account
}

func (m *mockAccountStore) Create(_ context.Context, a model.Account) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if strings.EqualFold(existing.Username, a.Username) {
			return model.Account{}, driven.ErrAlreadyExists
		}
	}
	m.nextID++
	a.ID = m.nextID
	m.rows[a.ID] = a
	return a, nil
}

func (m *mockAccountStore) GetByID(_ context.Context, id int64) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return model.Account{}, driven.ErrNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByUsername(_ context.Context, username string) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if strings.EqualFold(a.Username, username) {
			return a, nil
		}
	}
	return model.Account{}, driven.ErrNotFound
}

func (m *mockAccountStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type mockSessionStore struct {
	mu   sync.Mutex
	rows map[string]model.Session
}

func (m *mockSessionStore) Create(_ context.Context, s model.Session) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = s.TokenHash
	m.rows[s.TokenHash] = s
	return s, nil
}

func (m *mockSessionStore) GetByTokenHash(_ context.Context, tokenHash string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[tokenHash]
	if !ok {
		return model.Session{}, driven.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionStore) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, tokenHash)
	return nil
}

func (m *mockSessionStore) DeleteExpired(_ context.Context) (int64, error) { return 0, nil }

type mockAuditStore struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (m *mockAuditStore) Append(_ context.Context, e model.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.events) + 1)
	e.CreatedAt = time.Now().UTC()
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditStore) ListByAccount(_ context.Context, accountID int64, limit int) ([]model.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AuditEvent
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.events[i].AccountID == accountID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

type recordingMetrics struct {
	mu     sync.Mutex
	routes []string
}

func (m *recordingMetrics) ObserveRequest(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route)
}

type stubPinger struct {
	err   error
	panic bool
}

func (p stubPinger) PingContext(context.Context) error {
	if p.panic {
		panic("ping exploded")
	}
	return p.err
}

// --- Helpers ---

type testEnv struct {
	mux     http.Handler
	creds   *mockCredentialStore
	metrics *recordingMetrics
}

func newTestEnv(t *testing.T, pinger httphandler.Pinger) *testEnv {
	t.Helper()

	aead, err := cipher.New([]byte(strings.Repeat("k", cipher.KeySize)))
	require.NoError(t, err)
	argon, err := hasher.New(hasher.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	require.NoError(t, err)

	logger := slog.Default()
	creds := &mockCredentialStore{rows: map[int64]model.Credential{}}
	auditSvc := application.NewAuditService(&mockAuditStore{}, logger)
	credSvc := application.NewCredentialService(creds, application.NewCredentialCodec(aead), auditSvc, nil, logger)
	docSvc := application.NewDocumentService(&mockDocumentStore{rows: map[int64]model.Document{}})
	accountSvc := application.NewAccountService(
		&mockAccountStore{rows: map[int64]model.Account{}},
		&mockSessionStore{rows: map[string]model.Session{}},
		argon, time.Hour, logger,
	)

	metrics := &recordingMetrics{}
	h := httphandler.NewHandler(credSvc, docSvc, accountSvc, auditSvc, pinger, logger)
	return &testEnv{
		mux:     httphandler.NewServeMux(h, logger, metrics, nil),
		creds:   creds,
		metrics: metrics,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

// login registers username and returns a bearer token for it.
func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register/", "",
		`{"username":"`+username+`","email":"`+username+`@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login/", "",
		`{"username":"`+username+`","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]any
	decodeJSON(t, rec, &resp)
	token, ok := resp["token"].(string)
	require.True(t, ok)
	return token
}

func (e *testEnv) createCredential(t *testing.T, token string) int64 {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/passwords/", token,
		`{"website":"example.com","username":"alice","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	decodeJSON(t, rec, &resp)
	return int64(resp["id"].(float64))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	err := json.NewDecoder(rec.Body).Decode(v)
	require.NoError(t, err)
}

func credentialPath(id int64) string {
	return "/api/v1/passwords/" + itoa(id) + "/"
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// --- Tests ---

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pinger     httphandler.Pinger
		wantStatus int
		wantState  string
	}{
		{name: "no pinger", pinger: nil, wantStatus: http.StatusOK, wantState: "ok"},
		{name: "store reachable", pinger: stubPinger{}, wantStatus: http.StatusOK, wantState: "ok"},
		{name: "store down", pinger: stubPinger{err: errors.New("disk gone")}, wantStatus: http.StatusServiceUnavailable, wantState: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.pinger)
			rec := env.do(t, http.MethodGet, "/api/v1/health", "", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp map[string]any
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantState, resp["status"])
			assert.NotEmpty(t, resp["time"])
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	env := newTestEnv(t, stubPinger{panic: true})
	rec := env.do(t, http.MethodGet, "/api/v1/health", "", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "internal server error", resp["detail"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		method string
		path   string
		token  string
	}{
		{http.MethodGet, "/api/v1/passwords/", ""},
		{http.MethodPost, "/api/v1/passwords/", ""},
		{http.MethodGet, "/api/v1/passwords/1/", ""},
		{http.MethodDelete, "/api/v1/passwords/1/", ""},
		{http.MethodGet, "/api/v1/documents/", ""},
		{http.MethodGet, "/api/v1/audit/", ""},
		{http.MethodGet, "/api/v1/auth/profile/", ""},
		{http.MethodGet, "/api/v1/passwords/", "not-a-real-token"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.token, "")

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var resp map[string]any
			decodeJSON(t, rec, &resp)
			assert.Equal(t, "Authentication credentials were not provided or are invalid.", resp["detail"])
		})
	}
}

func TestCredentialLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.login(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/v1/passwords/", token,
		`{"website":"example.com","username":"alice","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	decodeJSON(t, rec, &created)
	assert.Equal(t, "example.com", created["website"])
	assert.NotContains(t, created, "password")
	id := int64(created["id"].(float64))

	rec = env.do(t, http.MethodGet, "/api/v1/passwords/", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	decodeJSON(t, rec, &list)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "password")

	rec = env.do(t, http.MethodGet, credentialPath(id), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail map[string]any
	decodeJSON(t, rec, &detail)
	assert.Equal(t, "hunter2", detail["password"])
	assert.Equal(t, "alice", detail["username"])

	rec = env.do(t, http.MethodPatch, credentialPath(id), token, `{"password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, credentialPath(id), token, `{"website":"other.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errs map[string][]string
	decodeJSON(t, rec, &errs)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")

	rec = env.do(t, http.MethodGet, credentialPath(id), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &detail)
	assert.Equal(t, "correct horse", detail["password"])
	assert.Equal(t, "example.com", detail["website"])

	rec = env.do(t, http.MethodDelete, credentialPath(id), token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = env.do(t, http.MethodGet, credentialPath(id), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCredentialStoredEncrypted(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.login(t, "alice")
	id := env.createCredential(t, token)

	stored := env.creds.rows[id]
	assert.NotEmpty(t, stored.PasswordCiphertext)
	assert.NotContains(t, stored.PasswordCiphertext, "hunter2")
}

func TestCredentialIsolation(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	id := env.createCredential(t, alice)

	tests := []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPatch, `{"website":"evil.com"}`},
		{http.MethodPut, `{"website":"evil.com","username":"bob","password":"x"}`},
		{http.MethodDelete, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := env.do(t, tt.method, credentialPath(id), bob, tt.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			var resp map[string]any
			decodeJSON(t, rec, &resp)
			assert.Equal(t, "Not found.", resp["detail"])
		})
	}

	rec := env.do(t, http.MethodGet, "/api/v1/passwords/", bob, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	decodeJSON(t, rec, &list)
	assert.Empty(t, list)

	rec = env.do(t, http.MethodGet, credentialPath(id), alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail map[string]any
	decodeJSON(t, rec, &detail)
	assert.Equal(t, "example.com", detail["website"])
}

func TestCreateCredential_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.login(t, "alice")

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing password", body: `{"website":"example.com","username":"alice"}`, wantField: "password"},
		{name: "blank website", body: `{"website":"","username":"alice","password":"pw"}`, wantField: "website"},
		{name: "non-string username", body: `{"website":"example.com","username":42,"password":"pw"}`, wantField: "username"},
		{name: "not an object", body: `["nope"]`, wantField: application.NonFieldErrors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/passwords/", token, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var errs map[string][]string
			decodeJSON(t, rec, &errs)
			assert.Contains(t, errs, tt.wantField)
		})
	}

	assert.Empty(t, env.creds.rows)
}

func TestCreateCredential_IgnoresClientOwner(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")

	rec := env.do(t, http.MethodPost, "/api/v1/passwords/", alice,
		`{"website":"example.com","username":"alice","password":"pw","owner":2,"id":99}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/passwords/", bob, "")
	var list []map[string]any
	decodeJSON(t, rec, &list)
	assert.Empty(t, list)
}

func TestRetrieveCredential_InvalidID(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.login(t, "alice")

	for _, path := range []string{"/api/v1/passwords/abc/", "/api/v1/passwords/0/", "/api/v1/passwords/9999/"} {
		rec := env.do(t, http.MethodGet, path, token, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestRetrieveCredential_DecryptionFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.login(t, "alice")
	id := env.createCredential(t, token)

	row := env.creds.rows[id]
	row.PasswordCiphertext = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	env.creds.rows[id] = row

	rec := env.do(t, http.MethodGet, credentialPath(id), token, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), row.PasswordCiphertext)
	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "internal server error", resp["detail"])
}

func TestTrailingSlashOptional(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.login(t, "alice")
	id := env.createCredential(t, token)

	rec := env.do(t, http.MethodGet, "/api/v1/passwords", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/passwords/"+itoa(id), token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccountFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.login(t, "alice")

	rec := env.do(t, http.MethodGet, "/api/v1/auth/profile/", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profile map[string]any
	decodeJSON(t, rec, &profile)
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "alice@example.com", profile["email"])
	assert.NotContains(t, profile, "password")

	rec = env.do(t, http.MethodPost, "/api/v1/auth/register/", "", `{"username":"alice","password":"another-pass"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errs map[string][]string
	decodeJSON(t, rec, &errs)
	assert.Contains(t, errs, "username")

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login/", "", `{"username":"alice","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login/", "", `{"username":"alice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decodeJSON(t, rec, &errs)
	assert.Contains(t, errs, "password")

	rec = env.do(t, http.MethodPost, "/api/v1/auth/logout/", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/profile/", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	env.createCredential(t, alice)

	tests := []struct {
		name     string
		body     string
		wantCode int
		field    string
	}{
		{name: "missing password", body: `{}`, wantCode: http.StatusBadRequest, field: "password"},
		{name: "wrong password", body: `{"password":"not-it"}`, wantCode: http.StatusBadRequest, field: "password"},
		{name: "not an object", body: `[1]`, wantCode: http.StatusBadRequest, field: "non_field_errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodDelete, "/api/v1/auth/profile/", alice, tt.body)
			require.Equal(t, tt.wantCode, rec.Code)
			var errs map[string][]string
			decodeJSON(t, rec, &errs)
			assert.Contains(t, errs, tt.field)
		})
	}

	rec := env.do(t, http.MethodDelete, "/api/v1/auth/profile/", "", `{"password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/auth/profile/", alice, `{"password":"s3cret-pass"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/profile/", alice, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/profile/", bob, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDocuments(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")

	rec := env.do(t, http.MethodPost, "/api/v1/documents/", alice,
		`{"title":"Lease","body":"**signed**\n\n<script>alert(1)</script>"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var doc map[string]any
	decodeJSON(t, rec, &doc)
	assert.Contains(t, doc["body_html"], "<strong>signed</strong>")
	assert.NotContains(t, doc["body_html"], "<script>")
	path := "/api/v1/documents/" + itoa(int64(doc["id"].(float64))) + "/"

	rec = env.do(t, http.MethodGet, path, bob, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPatch, path, alice, `{"title":"Lease 2025"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &doc)
	assert.Equal(t, "Lease 2025", doc["title"])

	rec = env.do(t, http.MethodPost, "/api/v1/documents/", alice, `{"body":"untitled"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, path, alice, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuditEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")
	id := env.createCredential(t, alice)

	rec := env.do(t, http.MethodGet, credentialPath(id), alice, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/audit/", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []map[string]any
	decodeJSON(t, rec, &events)
	require.Len(t, events, 2)
	assert.Equal(t, string(model.AuditCredentialReveal), events[0]["action"])
	assert.Equal(t, float64(id), events[0]["target_id"])
	assert.Equal(t, string(model.AuditCredentialCreate), events[1]["action"])

	rec = env.do(t, http.MethodGet, "/api/v1/audit/?limit=1", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &events)
	assert.Len(t, events, 1)

	rec = env.do(t, http.MethodGet, "/api/v1/audit/?limit=abc", alice, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/audit/", bob, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &events)
	assert.Empty(t, events)
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.login(t, "alice")
	id := env.createCredential(t, token)

	env.do(t, http.MethodGet, credentialPath(id), token, "")
	env.do(t, http.MethodGet, "/nowhere", "", "")

	env.metrics.mu.Lock()
	defer env.metrics.mu.Unlock()
	assert.Contains(t, env.metrics.routes, "GET /api/v1/passwords/{id}/{$}")
	assert.Contains(t, env.metrics.routes, "unmatched")
	for _, route := range env.metrics.routes {
		assert.NotContains(t, route, itoa(id)+"/")
	}
}
