package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// --- In-memory port implementations ---

type memCredentialStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Credential
	err    error
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{rows: make(map[int64]model.Credential)}
}

func (m *memCredentialStore) Create(_ context.Context, cred model.Credential) (model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Credential{}, m.err
	}
	m.nextID++
	cred.ID = m.nextID
	cred.CreatedAt = time.Now().UTC()
	cred.UpdatedAt = cred.CreatedAt
	m.rows[cred.ID] = cred
	return cred, nil
}

func (m *memCredentialStore) Get(_ context.Context, ownerID, id int64) (model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.rows[id]
	if !ok || cred.OwnerID != ownerID {
		return model.Credential{}, driven.ErrNotFound
	}
	return cred, nil
}

func (m *memCredentialStore) ListByOwner(_ context.Context, ownerID int64) ([]model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Credential
	for _, cred := range m.rows {
		if cred.OwnerID == ownerID {
			out = append(out, cred)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCredentialStore) Update(_ context.Context, cred model.Credential) (model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rows[cred.ID]
	if !ok || existing.OwnerID != cred.OwnerID {
		return model.Credential{}, driven.ErrNotFound
	}
	cred.UpdatedAt = time.Now().UTC()
	m.rows[cred.ID] = cred
	return cred, nil
}

func (m *memCredentialStore) Delete(_ context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.rows[id]
	if !ok || cred.OwnerID != ownerID {
		return driven.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memDocumentStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Document
}

func newMemDocumentStore() *memDocumentStore {
	return &memDocumentStore{rows: make(map[int64]model.Document)}
}

func (m *memDocumentStore) Create(_ context.Context, doc model.Document) (model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	doc.ID = m.nextID
	m.rows[doc.ID] = doc
	return doc, nil
}

func (m *memDocumentStore) Get(_ context.Context, ownerID, id int64) (model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.rows[id]
	if !ok || doc.OwnerID != ownerID {
		return model.Document{}, driven.ErrNotFound
	}
	return doc, nil
}

func (m *memDocumentStore) ListByOwner(_ context.Context, ownerID int64) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Document
	for _, doc := range m.rows {
		if doc.OwnerID == ownerID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDocumentStore) Update(_ context.Context, doc model.Document) (model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rows[doc.ID]
	if !ok || existing.OwnerID != doc.OwnerID {
		return model.Document{}, driven.ErrNotFound
	}
	m.rows[doc.ID] = doc
	return doc, nil
}

func (m *memDocumentStore) Delete(_ context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.rows[id]
	if !ok || doc.OwnerID != ownerID {
		return driven.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memAuditStore struct {
	mu     sync.Mutex
	events []model.AuditEvent
	err    error
}

func (m *memAuditStore) Append(_ context.Context, event model.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	event.ID = int64(len(m.events) + 1)
	m.events = append(m.events, event)
	return nil
}

func (m *memAuditStore) ListByAccount(_ context.Context, accountID int64, limit int) ([]model.AuditEvent, error) {
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

func (m *memAuditStore) actions() []model.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.AuditAction, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}

type memAccountStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Account
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{rows: make(map[int64]model.Account)}
}

func (m *memAccountStore) Create(_ context.Context, account model.Account) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if strings.EqualFold(existing.Username, account.Username) {
			return model.Account{}, driven.ErrAlreadyExists
		}
	}
	m.nextID++
	account.ID = m.nextID
	m.rows[account.ID] = account
	return account, nil
}

func (m *memAccountStore) GetByID(_ context.Context, id int64) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.rows[id]
	if !ok {
		return model.Account{}, driven.ErrNotFound
	}
	return account, nil
}

func (m *memAccountStore) GetByUsername(_ context.Context, username string) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.rows {
		if strings.EqualFold(account.Username, username) {
			return account, nil
		}
	}
	return model.Account{}, driven.ErrNotFound
}

func (m *memAccountStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return driven.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memSessionStore struct {
	mu   sync.Mutex
	rows map[string]model.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{rows: make(map[string]model.Session)}
}

func (m *memSessionStore) Create(_ context.Context, session model.Session) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.ID = session.TokenHash[:8]
	m.rows[session.TokenHash] = session
	return session, nil
}

func (m *memSessionStore) GetByTokenHash(_ context.Context, tokenHash string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.rows[tokenHash]
	if !ok {
		return model.Session{}, driven.ErrNotFound
	}
	return session, nil
}

func (m *memSessionStore) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, tokenHash)
	return nil
}

func (m *memSessionStore) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	now := time.Now()
	for k, s := range m.rows {
		if s.Expired(now) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

// plainHasher is a fast stand-in for argon2 in service tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }
func (plainHasher) Verify(encoded, password string) (bool, error) {
	if !strings.HasPrefix(encoded, "plain:") {
		return false, errors.New("bad hash")
	}
	return encoded == "plain:"+password, nil
}

// countingMetrics records CredentialMetrics calls.
type countingMetrics struct {
	mu       sync.Mutex
	reveals  int
	failures int
}

func (c *countingMetrics) CredentialRevealed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reveals++
}

func (c *countingMetrics) DecryptionFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
}
