package kvstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kestrelwallet/kestrel/internal/kvstore"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// openStores returns one store per implementation, backed by a temp dir
// for LevelDB, so both pass the same contract tests.
func openStores(t *testing.T) map[string]kvstore.Store {
	t.Helper()

	ldb, err := kvstore.OpenLevelDB(t.TempDir()+"/kv", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ldb.Close() })

	return map[string]kvstore.Store{
		"leveldb": ldb,
		"memory":  kvstore.NewMemory(),
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	t.Parallel()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put("wallet", []byte(`{"id":"a"}`)))

			got, err := store.Get("wallet")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"id":"a"}`), got)
		})
	}
}

func TestStore_GetAbsent(t *testing.T) {
	t.Parallel()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("missing")
			assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	t.Parallel()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put("k", []byte("v1")))
			require.NoError(t, store.Put("k", []byte("v2")))

			got, err := store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put("k", []byte("v")))
			require.NoError(t, store.Delete("k"))

			_, err := store.Get("k")
			assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)

			// Deleting an absent key is not an error.
			assert.NoError(t, store.Delete("k"))
		})
	}
}

func TestMemory_ClosedFailsAccessDenied(t *testing.T) {
	t.Parallel()
	store := kvstore.NewMemory()
	require.NoError(t, store.Close())

	_, err := store.Get("k")
	assert.True(t, kerrors.Is(err, kerrors.ErrAccessDenied))
	assert.True(t, kerrors.Is(store.Put("k", nil), kerrors.ErrAccessDenied))
	assert.True(t, kerrors.Is(store.Delete("k"), kerrors.ErrAccessDenied))
}

func TestMemory_FailureInjection(t *testing.T) {
	t.Parallel()
	store := kvstore.NewMemory()
	store.FailWith = kerrors.ErrQuotaExceeded

	err := store.Put("k", []byte("v"))
	assert.True(t, kerrors.Is(err, kerrors.ErrQuotaExceeded))
}

func TestLevelDB_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	path := t.TempDir() + "/kv"

	store, err := kvstore.OpenLevelDB(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Put("k", []byte("durable")))
	require.NoError(t, store.Close())

	reopened, err := kvstore.OpenLevelDB(path, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("durable"), got)
}
