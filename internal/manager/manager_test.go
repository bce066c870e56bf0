package manager_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/kestrelwallet/kestrel/internal/kvstore"
	"github.com/kestrelwallet/kestrel/internal/manager"
	"github.com/kestrelwallet/kestrel/internal/walletstore"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

const (
	testPassword = "correct horse battery"

	// BIP39 reference vector and its m/44'/60'/0'/0/0 account.
	testMnemonic   = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testAddress    = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	testPrivateKey = "0x1ab42cc412b618bdea3a599e3c9bae199ebf030895b039e9db1e30dafb12b727"

	// The scalar 1 and its well-known address.
	oneKey     = "0x0000000000000000000000000000000000000000000000000000000000000001"
	oneAddress = "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"
)

func newTestManager(t *testing.T) (*manager.Manager, *walletstore.Store) {
	t.Helper()
	store := walletstore.New(kvstore.NewMemory())
	m := manager.New(store, nil, manager.WithUnlockLimiter(rate.NewLimiter(rate.Inf, 0)))
	return m, store
}

func TestManager_CreateAndUnlock(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	result, err := m.Create(testPassword)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Address, "0x"))
	assert.Len(t, strings.Fields(result.Mnemonic), 12)

	has, err := m.HasWallet()
	require.NoError(t, err)
	assert.True(t, has)

	unlocked, err := m.Unlock(testPassword)
	require.NoError(t, err)
	defer unlocked.Destroy()

	assert.Equal(t, result.Address, unlocked.Address())
	assert.Equal(t, walletstore.TypeHD, unlocked.WalletType())

	phrase, ok := unlocked.Mnemonic()
	assert.True(t, ok)
	assert.Equal(t, result.Mnemonic, phrase)
}

func TestManager_Unlock_WrongPassword(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	_, err := m.Create(testPassword)
	require.NoError(t, err)

	_, err = m.Unlock("not the password")
	assert.True(t, kerrors.Is(err, kerrors.ErrDecryptionFailed))
}

func TestManager_Unlock_NoWallet(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	_, err := m.Unlock(testPassword)
	assert.True(t, kerrors.Is(err, kerrors.ErrNoWallet))
}

func TestManager_Create_ShortPassword(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	_, err := m.Create("short")
	assert.True(t, kerrors.Is(err, kerrors.ErrInvalidPassword))

	// Nothing was persisted.
	has, err := m.HasWallet()
	require.NoError(t, err)
	assert.False(t, has)
}

func TestManager_Create_SlotOccupied(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	_, err := m.Create(testPassword)
	require.NoError(t, err)

	_, err = m.Create(testPassword)
	assert.True(t, kerrors.Is(err, kerrors.ErrWalletExists))

	_, err = m.ImportFromMnemonic(testMnemonic, testPassword)
	assert.True(t, kerrors.Is(err, kerrors.ErrWalletExists))

	_, err = m.ImportFromPrivateKey(oneKey, testPassword)
	assert.True(t, kerrors.Is(err, kerrors.ErrWalletExists))
}

func TestManager_ImportFromMnemonic_KnownVector(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	address, err := m.ImportFromMnemonic(testMnemonic, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testAddress, address)

	key, err := m.ExportPrivateKey(testPassword)
	require.NoError(t, err)
	assert.Equal(t, testPrivateKey, key)

	phrase, err := m.ExportMnemonic(testPassword)
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, phrase)
}

func TestManager_ImportFromMnemonic_NormalizesPhrase(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	messy := "  Abandon ABANDON abandon\tabandon abandon abandon abandon abandon abandon abandon abandon about "
	address, err := m.ImportFromMnemonic(messy, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testAddress, address)

	phrase, err := m.ExportMnemonic(testPassword)
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, phrase)
}

func TestManager_ImportFromMnemonic_Invalid(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	_, err := m.ImportFromMnemonic("definitely not a bip39 phrase at all twelve words or no", testPassword)
	assert.True(t, kerrors.Is(err, kerrors.ErrInvalidMnemonic))
}

func TestManager_ImportFromPrivateKey_KnownVector(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	address, err := m.ImportFromPrivateKey(oneKey, testPassword)
	require.NoError(t, err)
	assert.Equal(t, oneAddress, address)

	typ, err := m.WalletType()
	require.NoError(t, err)
	assert.Equal(t, walletstore.TypeImported, typ)

	key, err := m.ExportPrivateKey(testPassword)
	require.NoError(t, err)
	assert.Equal(t, oneKey, key)

	// No mnemonic to export.
	_, err = m.ExportMnemonic(testPassword)
	assert.True(t, kerrors.Is(err, kerrors.ErrInvalidData))
}

func TestManager_ImportFromPrivateKey_Invalid(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	_, err := m.ImportFromPrivateKey("0xnothex", testPassword)
	assert.True(t, kerrors.Is(err, kerrors.ErrInvalidPrivateKey))
}

func TestManager_Unlock_AddressMismatchFails(t *testing.T) {
	t.Parallel()
	m, store := newTestManager(t)

	_, err := m.ImportFromPrivateKey(oneKey, testPassword)
	require.NoError(t, err)

	// Corrupt the record: swap in a different address. The ciphertext
	// still decrypts, but the integrity check must reject the session.
	record, err := store.LoadRecord()
	require.NoError(t, err)
	record.Address = testAddress
	require.NoError(t, store.SaveRecord(record))

	_, err = m.Unlock(testPassword)
	assert.True(t, kerrors.Is(err, kerrors.ErrDecryptionFailed))
}

func TestManager_VerifyPassword(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	_, err := m.ImportFromPrivateKey(oneKey, testPassword)
	require.NoError(t, err)

	assert.True(t, m.VerifyPassword(testPassword))
	assert.False(t, m.VerifyPassword("wrong password"))
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	assert.True(t, kerrors.Is(m.Delete(), kerrors.ErrNoWallet))

	_, err := m.ImportFromPrivateKey(oneKey, testPassword)
	require.NoError(t, err)

	require.NoError(t, m.Delete())

	has, err := m.HasWallet()
	require.NoError(t, err)
	assert.False(t, has)
}

func TestManager_ReadOnlyWhileLocked(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	_, err := m.Address()
	assert.True(t, kerrors.Is(err, kerrors.ErrNoWallet))

	_, err = m.ImportFromPrivateKey(oneKey, testPassword)
	require.NoError(t, err)

	address, err := m.Address()
	require.NoError(t, err)
	assert.Equal(t, oneAddress, address)

	typ, err := m.WalletType()
	require.NoError(t, err)
	assert.Equal(t, walletstore.TypeImported, typ)
}

func TestManager_NewRecords_DoNotPersist(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t)

	record, mnemonic, err := m.NewHDRecord(testPassword)
	require.NoError(t, err)
	require.NoError(t, record.Validate())
	assert.Len(t, strings.Fields(mnemonic), 12)

	imported, err := m.NewRecordFromPrivateKey(oneKey, testPassword)
	require.NoError(t, err)
	require.NoError(t, imported.Validate())
	assert.Equal(t, oneAddress, imported.Address)
	assert.NotEqual(t, record.ID, imported.ID)

	has, err := m.HasWallet()
	require.NoError(t, err)
	assert.False(t, has)
}
