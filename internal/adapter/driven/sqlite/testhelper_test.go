package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/docnest/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() ensures isolation between parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename component
	// and cannot be misinterpreted as query parameters in the "file:%s?..." DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		safeName,
	)

	db, err := open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// createTestAccount inserts an account so owner foreign keys resolve.
func createTestAccount(t *testing.T, db *DB, username string) model.Account {
	t.Helper()

	account, err := NewAccountRepo(db).Create(context.Background(), model.Account{
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5",
	})
	require.NoError(t, err)
	return account
}
