package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/finboard/go-accounts"
	"github.com/finboard/go-accounts/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRegistryCreateAndList(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time {
		return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	}

	registry := accounts.NewLocalRegistry(storage.NewMemory(), accounts.WithLocalClock(clock))

	records, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	created, err := registry.Create(ctx, accounts.UserRecord{
		UserID:   "bob",
		Email:    "bob@example.com",
		Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04T05:06:07Z", created.CreatedAt)

	records, err = registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].UserID)
}

func TestLocalRegistryCreateKeepsProvidedTimestamp(t *testing.T) {
	ctx := context.Background()
	registry := accounts.NewLocalRegistry(storage.NewMemory())

	created, err := registry.Create(ctx, accounts.UserRecord{
		UserID:    "bob",
		Password:  "pw",
		CreatedAt: "2020-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01T00:00:00Z", created.CreatedAt)
}

func TestLocalRegistryDuplicateChecksAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	registry := accounts.NewLocalRegistry(storage.NewMemory())

	_, err := registry.Create(ctx, accounts.UserRecord{UserID: "bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	// exact same id is rejected
	_, err = registry.Create(ctx, accounts.UserRecord{UserID: "bob", Email: "other@example.com", Password: "pw"})
	assert.ErrorIs(t, err, accounts.ErrDuplicateIdentity)

	// same email under a different id is rejected too
	_, err = registry.Create(ctx, accounts.UserRecord{UserID: "bobby", Email: "bob@example.com", Password: "pw"})
	assert.ErrorIs(t, err, accounts.ErrDuplicateIdentity)

	// a differently cased id is a distinct record here
	_, err = registry.Create(ctx, accounts.UserRecord{UserID: "BOB", Email: "bigbob@example.com", Password: "pw"})
	require.NoError(t, err)

	records, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestLocalRegistryEmptyEmailsCollide(t *testing.T) {
	ctx := context.Background()
	registry := accounts.NewLocalRegistry(storage.NewMemory())

	_, err := registry.Create(ctx, accounts.UserRecord{UserID: "bob", Password: "pw"})
	require.NoError(t, err)

	// email comparison is unconditional, so a second record without an
	// email matches the first
	_, err = registry.Create(ctx, accounts.UserRecord{UserID: "alice", Password: "pw"})
	assert.ErrorIs(t, err, accounts.ErrDuplicateIdentity)

	records, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLocalRegistryDuplicateLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	registry := accounts.NewLocalRegistry(storage.NewMemory())

	_, err := registry.Create(ctx, accounts.UserRecord{UserID: "bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	before, err := registry.List(ctx)
	require.NoError(t, err)

	_, err = registry.Create(ctx, accounts.UserRecord{UserID: "bob", Email: "bob@example.com", Password: "other"})
	require.ErrorIs(t, err, accounts.ErrDuplicateIdentity)

	after, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLocalRegistryDelete(t *testing.T) {
	ctx := context.Background()
	registry := accounts.NewLocalRegistry(storage.NewMemory())

	_, err := registry.Create(ctx, accounts.UserRecord{UserID: "bob", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, registry.Delete(ctx, "bob"))

	records, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	err = registry.Delete(ctx, "bob")
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestLocalRegistryDeleteMatchesExactID(t *testing.T) {
	ctx := context.Background()
	registry := accounts.NewLocalRegistry(storage.NewMemory())

	_, err := registry.Create(ctx, accounts.UserRecord{UserID: "bob", Password: "pw"})
	require.NoError(t, err)

	err = registry.Delete(ctx, "BOB")
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestLocalRegistryToleratesCorruptStorage(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, accounts.LocalRegistryKey, "{not json"))

	registry := accounts.NewLocalRegistry(store)

	records, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	// a create resets the key to a well formed list
	_, err = registry.Create(ctx, accounts.UserRecord{UserID: "bob", Password: "pw"})
	require.NoError(t, err)

	records, err = registry.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLocalRegistryPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	first := accounts.NewLocalRegistry(store)
	_, err := first.Create(ctx, accounts.UserRecord{UserID: "bob", Password: "pw"})
	require.NoError(t, err)

	second := accounts.NewLocalRegistry(store)
	records, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].UserID)
}
