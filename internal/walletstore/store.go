package walletstore

import (
	"encoding/json"
	"errors"

	"github.com/kestrelwallet/kestrel/internal/kvstore"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// Storage keys on the key-value substrate. Out-of-scope collaborators
// (transaction history, address book, backup status) use their own keys
// and never touch these.
const (
	recordKey      = "wallet"
	registryKey    = "wallet_registry"
	preferencesKey = "preferences"
)

// Store reads and writes wallet records on the key-value substrate.
// Mutations go through the wallet manager and registry only; they hold
// the single-writer discipline, Store itself is a dumb codec layer.
type Store struct {
	kv kvstore.Store
}

// New creates a store on the given substrate.
func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// SaveRecord persists the single-wallet record.
func (s *Store) SaveRecord(record *Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrInvalidData, "encoding wallet record")
	}

	return s.kv.Put(recordKey, data)
}

// LoadRecord returns the single-wallet record, or ErrNoWallet if the
// slot is empty.
func (s *Store) LoadRecord() (*Record, error) {
	data, err := s.kv.Get(recordKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, kerrors.ErrNoWallet
		}
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrInvalidData, "decoding wallet record")
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	return &record, nil
}

// HasRecord reports whether the single-wallet slot is occupied.
func (s *Store) HasRecord() (bool, error) {
	_, err := s.kv.Get(recordKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteRecord removes the single-wallet record irreversibly.
// Fails with ErrNoWallet if the slot is already empty.
func (s *Store) DeleteRecord() error {
	if _, err := s.kv.Get(recordKey); err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return kerrors.ErrNoWallet
		}
		return err
	}
	return s.kv.Delete(recordKey)
}

// LoadRegistry returns the multi-wallet registry. An absent blob is an
// empty registry, not an error.
func (s *Store) LoadRegistry() (*Registry, error) {
	data, err := s.kv.Get(registryKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return NewRegistry(), nil
		}
		return nil, err
	}

	var registry Registry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrInvalidData, "decoding wallet registry")
	}
	if registry.Wallets == nil {
		registry.Wallets = make(map[string]*RegistryEntry)
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	return &registry, nil
}

// SaveRegistry persists the registry. An empty registry removes the
// whole blob rather than leaving a dangling record.
func (s *Store) SaveRegistry(registry *Registry) error {
	if registry == nil || registry.Empty() {
		return s.kv.Delete(registryKey)
	}

	if err := registry.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(registry)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrInvalidData, "encoding wallet registry")
	}

	return s.kv.Put(registryKey, data)
}

// LoadPreferences returns the stored preferences, or zero preferences
// if none are stored yet.
func (s *Store) LoadPreferences() (*Preferences, error) {
	data, err := s.kv.Get(preferencesKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return &Preferences{}, nil
		}
		return nil, err
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrInvalidData, "decoding preferences")
	}

	return &prefs, nil
}

// SavePreferences persists the preferences as plaintext. Preferences
// are not secret material and are never encrypted.
func (s *Store) SavePreferences(prefs *Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrInvalidData, "encoding preferences")
	}
	return s.kv.Put(preferencesKey, data)
}
