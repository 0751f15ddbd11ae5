package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

func TestCredentialRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestAccount(t, db, "alice")
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Credential{
		OwnerID:            owner.ID,
		Website:            "example.com",
		Username:           "alice",
		PasswordCiphertext: "opaque-ciphertext",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.Get(ctx, owner.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, "example.com", got.Website)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "opaque-ciphertext", got.PasswordCiphertext)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestCredentialRepo_OwnerScoping(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestAccount(t, db, "alice")
	bob := createTestAccount(t, db, "bob")
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	cred, err := repo.Create(ctx, model.Credential{OwnerID: alice.ID, Website: "a.com", Username: "a", PasswordCiphertext: "x"})
	require.NoError(t, err)

	_, err = repo.Get(ctx, bob.ID, cred.ID)
	assert.ErrorIs(t, err, driven.ErrNotFound)

	list, err := repo.ListByOwner(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.Update(ctx, model.Credential{ID: cred.ID, OwnerID: bob.ID, Website: "evil", Username: "evil", PasswordCiphertext: "y"})
	assert.ErrorIs(t, err, driven.ErrNotFound)

	err = repo.Delete(ctx, bob.ID, cred.ID)
	assert.ErrorIs(t, err, driven.ErrNotFound)

	// Alice's row is untouched by Bob's attempts.
	got, err := repo.Get(ctx, alice.ID, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.com", got.Website)
	assert.Equal(t, "x", got.PasswordCiphertext)
}

func TestCredentialRepo_ListByOwnerOrdered(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestAccount(t, db, "alice")
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	for _, site := range []string{"b.com", "a.com", "c.com"} {
		_, err := repo.Create(ctx, model.Credential{OwnerID: alice.ID, Website: site, Username: "u", PasswordCiphertext: "x"})
		require.NoError(t, err)
	}

	list, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "b.com", list[0].Website)
	assert.Less(t, list[0].ID, list[1].ID)
	assert.Less(t, list[1].ID, list[2].ID)
}

func TestCredentialRepo_Update(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestAccount(t, db, "alice")
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	cred, err := repo.Create(ctx, model.Credential{OwnerID: alice.ID, Website: "a.com", Username: "a", PasswordCiphertext: "x"})
	require.NoError(t, err)

	cred.Website = "b.com"
	cred.PasswordCiphertext = "y"
	_, err = repo.Update(ctx, cred)
	require.NoError(t, err)

	got, err := repo.Get(ctx, alice.ID, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.com", got.Website)
	assert.Equal(t, "y", got.PasswordCiphertext)
	assert.Equal(t, alice.ID, got.OwnerID)
}

func TestCredentialRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestAccount(t, db, "alice")
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	cred, err := repo.Create(ctx, model.Credential{OwnerID: alice.ID, Website: "a.com", Username: "a", PasswordCiphertext: "x"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, alice.ID, cred.ID))

	_, err = repo.Get(ctx, alice.ID, cred.ID)
	assert.ErrorIs(t, err, driven.ErrNotFound)

	err = repo.Delete(ctx, alice.ID, cred.ID)
	assert.ErrorIs(t, err, driven.ErrNotFound, "second delete reports not found")
}

func TestCredentialRepo_CascadeOnAccountDelete(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestAccount(t, db, "alice")
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Credential{OwnerID: alice.ID, Website: "a.com", Username: "a", PasswordCiphertext: "x"})
	require.NoError(t, err)

	require.NoError(t, NewAccountRepo(db).Delete(ctx, alice.ID))

	var count int
	require.NoError(t, db.Reader.QueryRow(`SELECT COUNT(*) FROM passwords`).Scan(&count))
	assert.Zero(t, count)
}

func TestCredentialRepo_CreateRequiresExistingOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)

	_, err := repo.Create(context.Background(), model.Credential{OwnerID: 999, Website: "a.com", Username: "a", PasswordCiphertext: "x"})
	assert.Error(t, err)
}
