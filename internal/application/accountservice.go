package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 150
	minPasswordLen = 8
	tokenBytes     = 32
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username *string
	Email    *string
	Password *string
}

// DecodeRegisterInput parses a JSON registration body.
func DecodeRegisterInput(raw []byte) (RegisterInput, error) {
	fields, err := decodeStringFields(raw, "username", "email", "password")
	if err != nil {
		return RegisterInput{}, err
	}
	return RegisterInput{Username: fields["username"], Email: fields["email"], Password: fields["password"]}, nil
}

// LoginResult is returned by a successful Login. Token is shown to the client
// once; only its hash is persisted.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   model.Account
}

// AccountService handles registration and bearer-token sessions.
type AccountService struct {
	accounts   driven.AccountStore
	sessions   driven.SessionStore
	hasher     driven.PasswordHasher
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService creates an AccountService. Sessions live for sessionTTL.
func NewAccountService(
	accounts driven.AccountStore,
	sessions driven.SessionStore,
	hasher driven.PasswordHasher,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts:   accounts,
		sessions:   sessions,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Register validates in and creates a new account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.Account, error) {
	verr := NewValidationError()

	if in.Username != nil {
		v := strings.TrimSpace(*in.Username)
		in.Username = &v
	}
	checkText(verr, "username", in.Username, false, maxUsernameLen)
	if in.Username != nil && !verr.Has("username") && !isValidUsername(*in.Username) {
		verr.Add("username", fmt.Sprintf("Enter a valid username of at least %d characters. This value may contain only letters, numbers, and @/./+/-/_ characters.", minUsernameLen))
	}

	email := ""
	if in.Email != nil {
		email = strings.TrimSpace(*in.Email)
		if email != "" && !strings.Contains(email, "@") {
			verr.Add("email", "Enter a valid email address.")
		}
	}

	checkText(verr, "password", in.Password, false, 0)
	if in.Password != nil && *in.Password != "" && utf8.RuneCountInString(*in.Password) < minPasswordLen {
		verr.Add("password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLen))
	}

	if err := verr.errOrNil(); err != nil {
		return model.Account{}, err
	}

	hash, err := s.hasher.Hash(*in.Password)
	if err != nil {
		return model.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, model.Account{
		Username:     *in.Username,
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, driven.ErrAlreadyExists) {
		verr.Add("username", "A user with that username already exists.")
		return model.Account{}, verr
	}
	if err != nil {
		return model.Account{}, err
	}

	s.logger.Info("account registered", "account_id", account.ID)
	return account, nil
}

// Login verifies credentials and opens a new session.
func (s *AccountService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, driven.ErrNotFound) {
		// Burn comparable time so unknown usernames are not distinguishable.
		s.verifyDummy(password)
		return LoginResult{}, ErrUnauthenticated
	}
	if err != nil {
		return LoginResult{}, err
	}

	ok, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Warn("login failed", "account_id", account.ID)
		return LoginResult{}, ErrUnauthenticated
	}

	token, err := newToken()
	if err != nil {
		return LoginResult{}, err
	}

	now := s.now().UTC()
	session, err := s.sessions.Create(ctx, model.Session{
		AccountID: account.ID,
		TokenHash: hashToken(token),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("open session: %w", err)
	}

	return LoginResult{Token: token, ExpiresAt: session.ExpiresAt, Account: account}, nil
}

// Authenticate resolves a bearer token to its account.
func (s *AccountService) Authenticate(ctx context.Context, token string) (model.Account, error) {
	if token == "" {
		return model.Account{}, ErrUnauthenticated
	}

	session, err := s.sessions.GetByTokenHash(ctx, hashToken(token))
	if errors.Is(err, driven.ErrNotFound) {
		return model.Account{}, ErrUnauthenticated
	}
	if err != nil {
		return model.Account{}, err
	}
	if session.Expired(s.now()) {
		return model.Account{}, ErrUnauthenticated
	}

	account, err := s.accounts.GetByID(ctx, session.AccountID)
	if errors.Is(err, driven.ErrNotFound) {
		return model.Account{}, ErrUnauthenticated
	}
	return account, err
}

// Logout ends the session identified by token.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteByTokenHash(ctx, hashToken(token))
}

// Profile returns the account for accountID.
func (s *AccountService) Profile(ctx context.Context, accountID int64) (model.Account, error) {
	if accountID == 0 {
		return model.Account{}, ErrUnauthenticated
	}
	return s.accounts.GetByID(ctx, accountID)
}

// DeleteAccount removes accountID after re-checking its password. Owned
// credentials, documents, sessions and audit events go with it.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID int64, password string) error {
	if accountID == 0 {
		return ErrUnauthenticated
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		verr := NewValidationError()
		verr.Add("password", "Incorrect password.")
		return verr
	}

	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("account deleted", "account_id", accountID)
	return nil
}

// PurgeExpiredSessions removes stale sessions and returns how many went.
func (s *AccountService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

// StartSessionJanitor purges expired sessions every interval until ctx is done.
func (s *AccountService) StartSessionJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.PurgeExpiredSessions(ctx)
			if err != nil {
				s.logger.Error("session purge failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Info("expired sessions purged", "count", removed)
			}
		}
	}
}

func (s *AccountService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("docnest-dummy-password")
		if err != nil {
			s.logger.Error("dummy hash failed", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(s.dummyHash, password)
	}
}

func isValidUsername(name string) bool {
	if utf8.RuneCountInString(name) < minUsernameLen {
		return false
	}
	for _, ch := range name {
		if !isValidUsernameChar(ch) {
			return false
		}
	}
	return true
}

func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '@' || ch == '.' || ch == '+' || ch == '-' || ch == '_'
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
