// Package walletstore persists encrypted wallet records and the
// multi-wallet registry on the key-value substrate. Records only ever
// contain enveloped secrets; nothing in this package sees plaintext key
// material.
package walletstore

import (
	"time"

	"github.com/kestrelwallet/kestrel/internal/envelope"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// Type identifies how a wallet's key material originated.
type Type string

// Wallet types.
const (
	// TypeHD is a wallet derived from a mnemonic phrase.
	TypeHD Type = "hd"

	// TypeImported is a wallet created from a raw private key.
	TypeImported Type = "imported"
)

// Record is one persisted wallet. The address is the deterministic
// public identifier of the plaintext key inside EncryptedPrivateKey; it
// is re-verified on every unlock, never trusted from storage alone.
type Record struct {
	ID                  string             `json:"id"`
	Address             string             `json:"address"`
	Type                Type               `json:"type"`
	EncryptedPrivateKey *envelope.Envelope `json:"encrypted_private_key"`
	EncryptedMnemonic   *envelope.Envelope `json:"encrypted_mnemonic,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}

// Validate checks structural consistency of a record. An HD record must
// carry an encrypted mnemonic; an imported record must not.
func (r *Record) Validate() error {
	if r == nil || r.ID == "" || r.Address == "" || r.EncryptedPrivateKey == nil {
		return kerrors.Wrap(kerrors.ErrInvalidData, "incomplete wallet record")
	}

	switch r.Type {
	case TypeHD:
		if r.EncryptedMnemonic == nil {
			return kerrors.Wrap(kerrors.ErrInvalidData, "hd wallet record missing mnemonic envelope")
		}
	case TypeImported:
		if r.EncryptedMnemonic != nil {
			return kerrors.Wrap(kerrors.ErrInvalidData, "imported wallet record carries mnemonic envelope")
		}
	default:
		return kerrors.Wrap(kerrors.ErrInvalidData, "unknown wallet type")
	}

	return nil
}

// RegistryEntry is a wallet record plus the per-profile metadata the
// multi-wallet registry layers on top of it.
type RegistryEntry struct {
	Record
	Label      string    `json:"label,omitempty"`
	Color      string    `json:"color,omitempty"`
	Icon       string    `json:"icon,omitempty"`
	Order      int       `json:"order"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Registry is the persisted multi-wallet state for one profile.
type Registry struct {
	Wallets        map[string]*RegistryEntry `json:"wallets"`
	ActiveWalletID string                    `json:"active_wallet_id,omitempty"`
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{Wallets: make(map[string]*RegistryEntry)}
}

// Validate checks the registry invariant: ActiveWalletID, if set, keys
// into Wallets.
func (g *Registry) Validate() error {
	if g.ActiveWalletID == "" {
		return nil
	}
	if _, ok := g.Wallets[g.ActiveWalletID]; !ok {
		return kerrors.Wrap(kerrors.ErrInvalidData, "active wallet id not present in registry")
	}
	return nil
}

// Empty reports whether the registry holds no wallets.
func (g *Registry) Empty() bool {
	return len(g.Wallets) == 0
}

// Preferences holds non-secret, plaintext profile settings.
type Preferences struct {
	// IdleTimeout is the auto-lock policy name ("1m", "5m", "15m",
	// "30m", or "never").
	IdleTimeout string `json:"idle_timeout,omitempty"`
}
