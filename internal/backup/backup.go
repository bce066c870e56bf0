// Package backup exports and imports the full wallet state as a single
// passphrase-protected file. The snapshot carries enveloped records
// only, so a backup is ciphertext twice over: once per wallet password,
// once under the backup passphrase.
package backup

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"filippo.io/age"

	"github.com/kestrelwallet/kestrel/internal/walletstore"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// SnapshotVersion identifies the backup payload layout.
const SnapshotVersion = 1

// Snapshot is the plaintext payload inside a backup file. Every field
// except Version and ExportedAt is optional; an empty profile produces
// an empty but valid snapshot.
type Snapshot struct {
	Version     int                      `json:"version"`
	ExportedAt  time.Time                `json:"exported_at"`
	Record      *walletstore.Record      `json:"record,omitempty"`
	Registry    *walletstore.Registry    `json:"registry,omitempty"`
	Preferences *walletstore.Preferences `json:"preferences,omitempty"`
}

// Export writes the store's full state to path, encrypted under the
// backup passphrase with age.
func Export(store *walletstore.Store, passphrase, path string) error {
	snapshot, err := capture(store)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrInvalidData, "encoding backup snapshot")
	}

	ciphertext, err := encrypt(payload, passphrase)
	if err != nil {
		return err
	}

	return writeAtomic(path, ciphertext, 0o600)
}

// Import reads a backup file and restores its state into the store,
// overwriting whatever is there. Wrong passphrase and corrupted files
// are indistinguishable, both fail with DecryptionFailed.
func Import(store *walletstore.Store, passphrase, path string) error {
	// #nosec G304 -- backup file path is from validated user input
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrAccessDenied, "reading backup file")
	}

	payload, err := decrypt(ciphertext, passphrase)
	if err != nil {
		return err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return kerrors.Wrap(kerrors.ErrInvalidData, "decoding backup snapshot")
	}
	if snapshot.Version != SnapshotVersion {
		return kerrors.WithDetails(
			kerrors.Wrap(kerrors.ErrInvalidData, "unsupported backup version"),
			map[string]string{"version": strconv.Itoa(snapshot.Version)},
		)
	}

	return restore(store, &snapshot)
}

// capture reads the store's current state. An empty single-wallet slot
// is fine; only substrate failures propagate.
func capture(store *walletstore.Store) (*Snapshot, error) {
	snapshot := &Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC(),
	}

	record, err := store.LoadRecord()
	switch {
	case err == nil:
		snapshot.Record = record
	case kerrors.Is(err, kerrors.ErrNoWallet):
	default:
		return nil, err
	}

	registry, err := store.LoadRegistry()
	if err != nil {
		return nil, err
	}
	if !registry.Empty() {
		snapshot.Registry = registry
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		return nil, err
	}
	if *prefs != (walletstore.Preferences{}) {
		snapshot.Preferences = prefs
	}

	return snapshot, nil
}

// restore writes the snapshot into the store. Records re-validate on
// the way in; a snapshot carrying malformed records never lands.
func restore(store *walletstore.Store, snapshot *Snapshot) error {
	if snapshot.Record != nil {
		if err := store.SaveRecord(snapshot.Record); err != nil {
			return err
		}
	}
	if snapshot.Registry != nil {
		if err := store.SaveRegistry(snapshot.Registry); err != nil {
			return err
		}
	}
	if snapshot.Preferences != nil {
		if err := store.SavePreferences(snapshot.Preferences); err != nil {
			return err
		}
	}
	return nil
}

// encrypt seals payload with an age scrypt recipient.
func encrypt(payload []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrEncryptionFailed, "creating backup recipient")
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrEncryptionFailed, "initializing backup encryption")
	}
	if _, err := w.Write(payload); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrEncryptionFailed, "writing backup payload")
	}
	if err := w.Close(); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrEncryptionFailed, "finalizing backup encryption")
	}

	return buf.Bytes(), nil
}

// decrypt opens an age backup. All failures collapse into
// DecryptionFailed.
func decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, kerrors.ErrDecryptionFailed
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, kerrors.ErrDecryptionFailed
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, kerrors.ErrDecryptionFailed
	}
	return payload, nil
}
