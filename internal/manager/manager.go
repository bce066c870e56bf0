// Package manager orchestrates wallet lifecycle: creation, import,
// unlock, export and deletion. It is the only component that turns
// passwords into plaintext key material, and it hands that material out
// exclusively as session values or one-shot return values.
package manager

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kestrelwallet/kestrel/internal/envelope"
	"github.com/kestrelwallet/kestrel/internal/keys"
	"github.com/kestrelwallet/kestrel/internal/secure"
	"github.com/kestrelwallet/kestrel/internal/session"
	"github.com/kestrelwallet/kestrel/internal/walletstore"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// MinPasswordLength is the only password rule. Length is enforced at
// creation and import; unlock accepts whatever was set.
const MinPasswordLength = 8

// Unlock attempts are rate limited to slow down password guessing. The
// limiter delays, it never refuses, so a legitimate retry after a typo
// still goes through.
const (
	unlockBurst    = 3
	unlockInterval = 2 * time.Second
)

// Manager owns the single-wallet slot. Callers serialize mutations
// (one UI session drives the manager); each method is a single
// read-validate-write sequence against the store.
type Manager struct {
	store   *walletstore.Store
	log     *zap.Logger
	limiter *rate.Limiter
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithUnlockLimiter replaces the unlock rate limiter. Tests use an
// unlimited limiter to keep repeated unlocks fast.
func WithUnlockLimiter(limiter *rate.Limiter) Option {
	return func(m *Manager) { m.limiter = limiter }
}

// New creates a manager over the given record store.
func New(store *walletstore.Store, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	m := &Manager{
		store:   store,
		log:     log,
		limiter: rate.NewLimiter(rate.Every(unlockInterval), unlockBurst),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateResult is returned once at wallet creation. The mnemonic is the
// only copy the caller will ever get without re-entering the password.
type CreateResult struct {
	Address  string
	Mnemonic string
}

// Create generates a fresh wallet: new mnemonic, one derived account,
// both secrets enveloped under the password. Fails with WalletExists if
// the slot is occupied.
func (m *Manager) Create(password string) (*CreateResult, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := m.requireEmptySlot(); err != nil {
		return nil, err
	}

	mnemonic, err := keys.GenerateMnemonic()
	if err != nil {
		return nil, err
	}

	record, err := m.buildHDRecord(mnemonic, password)
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveRecord(record); err != nil {
		return nil, err
	}

	m.log.Info("wallet created",
		zap.String("address", record.Address),
		zap.String("type", string(record.Type)))

	return &CreateResult{Address: record.Address, Mnemonic: mnemonic}, nil
}

// ImportFromMnemonic restores a wallet from an existing phrase. The
// phrase is normalized before derivation, so spacing and case do not
// change the resulting account.
func (m *Manager) ImportFromMnemonic(phrase, password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	if err := m.requireEmptySlot(); err != nil {
		return "", err
	}

	record, err := m.buildHDRecord(phrase, password)
	if err != nil {
		return "", err
	}
	if err := m.store.SaveRecord(record); err != nil {
		return "", err
	}

	m.log.Info("wallet imported",
		zap.String("address", record.Address),
		zap.String("type", string(record.Type)))

	return record.Address, nil
}

// ImportFromPrivateKey imports a raw secp256k1 key, with or without a
// 0x prefix. The resulting wallet has no mnemonic.
func (m *Manager) ImportFromPrivateKey(key, password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	if err := m.requireEmptySlot(); err != nil {
		return "", err
	}

	record, err := m.buildImportedRecord(key, password)
	if err != nil {
		return "", err
	}
	if err := m.store.SaveRecord(record); err != nil {
		return "", err
	}

	m.log.Info("wallet imported",
		zap.String("address", record.Address),
		zap.String("type", string(record.Type)))

	return record.Address, nil
}

// Unlock decrypts the stored wallet and returns a live session. Every
// failure on the decryption path surfaces as the same DecryptionFailed
// error; callers cannot distinguish a wrong password from tampered
// ciphertext.
func (m *Manager) Unlock(password string) (*session.Unlocked, error) {
	record, err := m.store.LoadRecord()
	if err != nil {
		return nil, err
	}
	return m.UnlockRecord(record, password)
}

// UnlockRecord decrypts a specific record. The multi-wallet registry
// uses this to unlock its active wallet.
func (m *Manager) UnlockRecord(record *walletstore.Record, password string) (*session.Unlocked, error) {
	m.throttle()

	privateKey, err := envelope.DecryptSecure(record.EncryptedPrivateKey, password)
	if err != nil {
		m.log.Warn("unlock failed", zap.String("address", record.Address))
		return nil, err
	}

	var mnemonic *secure.Buffer
	if record.EncryptedMnemonic != nil {
		mnemonic, err = envelope.DecryptSecure(record.EncryptedMnemonic, password)
		if err != nil {
			privateKey.Destroy()
			m.log.Warn("unlock failed", zap.String("address", record.Address))
			return nil, err
		}
	}

	// Integrity check: the decrypted key must still produce the stored
	// address. A mismatch means the record was corrupted or swapped.
	address, err := keys.AddressFromPrivateKey(privateKey.Bytes())
	if err != nil || address != record.Address {
		privateKey.Destroy()
		if mnemonic != nil {
			mnemonic.Destroy()
		}
		m.log.Warn("unlock failed", zap.String("address", record.Address))
		return nil, kerrors.ErrDecryptionFailed
	}

	m.log.Info("wallet unlocked", zap.String("address", record.Address))
	return session.NewUnlocked(record.Address, record.Type, privateKey, mnemonic), nil
}

// ExportPrivateKey re-authenticates and returns the hex-encoded private
// key. The caller is responsible for what happens to the string.
func (m *Manager) ExportPrivateKey(password string) (string, error) {
	unlocked, err := m.Unlock(password)
	if err != nil {
		return "", err
	}
	defer unlocked.Destroy()

	return keys.EncodePrivateKey(unlocked.PrivateKey()), nil
}

// ExportMnemonic re-authenticates and returns the mnemonic phrase.
// Imported wallets have none and fail with InvalidData.
func (m *Manager) ExportMnemonic(password string) (string, error) {
	unlocked, err := m.Unlock(password)
	if err != nil {
		return "", err
	}
	defer unlocked.Destroy()

	phrase, ok := unlocked.Mnemonic()
	if !ok {
		return "", kerrors.WithSuggestion(
			kerrors.Wrap(kerrors.ErrInvalidData, "wallet has no mnemonic"),
			"wallets imported from a raw private key can only export the key itself",
		)
	}
	return phrase, nil
}

// VerifyPassword reports whether the password opens the stored wallet.
// It decrypts and discards; no session is created.
func (m *Manager) VerifyPassword(password string) bool {
	unlocked, err := m.Unlock(password)
	if err != nil {
		return false
	}
	unlocked.Destroy()
	return true
}

// Delete removes the wallet record unconditionally. No password check:
// deletion destroys ciphertext, it reveals nothing.
func (m *Manager) Delete() error {
	record, err := m.store.LoadRecord()
	if err != nil {
		return err
	}
	if err := m.store.DeleteRecord(); err != nil {
		return err
	}

	m.log.Info("wallet deleted", zap.String("address", record.Address))
	return nil
}

// HasWallet reports whether the slot is occupied. Usable while locked.
func (m *Manager) HasWallet() (bool, error) {
	return m.store.HasRecord()
}

// Address returns the stored wallet's address without unlocking, or ""
// with ErrNoWallet when the slot is empty.
func (m *Manager) Address() (string, error) {
	record, err := m.store.LoadRecord()
	if err != nil {
		return "", err
	}
	return record.Address, nil
}

// WalletType returns the stored wallet's type without unlocking.
func (m *Manager) WalletType() (walletstore.Type, error) {
	record, err := m.store.LoadRecord()
	if err != nil {
		return "", err
	}
	return record.Type, nil
}

// NewHDRecord builds an enveloped HD record without persisting it. The
// registry uses this to add wallets beyond the single slot. The mnemonic
// is returned exactly once.
func (m *Manager) NewHDRecord(password string) (*walletstore.Record, string, error) {
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}

	mnemonic, err := keys.GenerateMnemonic()
	if err != nil {
		return nil, "", err
	}
	record, err := m.buildHDRecord(mnemonic, password)
	if err != nil {
		return nil, "", err
	}
	return record, mnemonic, nil
}

// NewRecordFromMnemonic builds an enveloped HD record from an existing
// phrase without persisting it.
func (m *Manager) NewRecordFromMnemonic(phrase, password string) (*walletstore.Record, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return m.buildHDRecord(phrase, password)
}

// NewRecordFromPrivateKey builds an enveloped imported record without
// persisting it.
func (m *Manager) NewRecordFromPrivateKey(key, password string) (*walletstore.Record, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return m.buildImportedRecord(key, password)
}

func (m *Manager) buildHDRecord(phrase, password string) (*walletstore.Record, error) {
	keypair, err := keys.DeriveFromMnemonic(phrase)
	if err != nil {
		return nil, err
	}
	defer keypair.Destroy()

	keyEnvelope, err := envelope.Encrypt(keypair.PrivateKey.Bytes(), password)
	if err != nil {
		return nil, err
	}

	normalized := []byte(keys.NormalizeMnemonic(phrase))
	mnemonicEnvelope, err := envelope.Encrypt(normalized, password)
	secure.Zero(normalized)
	if err != nil {
		return nil, err
	}

	return &walletstore.Record{
		ID:                  uuid.NewString(),
		Address:             keypair.Address,
		Type:                walletstore.TypeHD,
		EncryptedPrivateKey: keyEnvelope,
		EncryptedMnemonic:   mnemonicEnvelope,
		CreatedAt:           m.now().UTC(),
	}, nil
}

func (m *Manager) buildImportedRecord(key, password string) (*walletstore.Record, error) {
	keypair, err := keys.DeriveFromPrivateKey(key)
	if err != nil {
		return nil, err
	}
	defer keypair.Destroy()

	keyEnvelope, err := envelope.Encrypt(keypair.PrivateKey.Bytes(), password)
	if err != nil {
		return nil, err
	}

	return &walletstore.Record{
		ID:                  uuid.NewString(),
		Address:             keypair.Address,
		Type:                walletstore.TypeImported,
		EncryptedPrivateKey: keyEnvelope,
		CreatedAt:           m.now().UTC(),
	}, nil
}

// requireEmptySlot enforces single-wallet semantics for Create and the
// Import operations.
func (m *Manager) requireEmptySlot() error {
	occupied, err := m.store.HasRecord()
	if err != nil {
		return err
	}
	if occupied {
		return kerrors.ErrWalletExists
	}
	return nil
}

// throttle delays the caller according to the unlock rate limit.
func (m *Manager) throttle() {
	reservation := m.limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		time.Sleep(delay)
	}
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return kerrors.WithSuggestion(
			kerrors.ErrInvalidPassword,
			"use at least 8 characters",
		)
	}
	return nil
}
