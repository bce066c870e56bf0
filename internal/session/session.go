// Package session holds decrypted key material between unlock and lock
// and enforces the idle auto-lock policy. At most one session exists at
// a time; adopting a new one destroys the old first.
package session

import (
	"github.com/kestrelwallet/kestrel/internal/secure"
	"github.com/kestrelwallet/kestrel/internal/walletstore"
)

// Unlocked is the in-memory state of an unlocked wallet. The secret
// buffers are mlocked and zeroed on Destroy; callers must never copy
// their contents into longer-lived storage.
type Unlocked struct {
	address    string
	walletType walletstore.Type
	privateKey *secure.Buffer
	mnemonic   *secure.Buffer // nil for imported wallets
}

// NewUnlocked wraps decrypted key material into a session. Ownership of
// both buffers transfers to the session; mnemonic may be nil.
func NewUnlocked(address string, walletType walletstore.Type, privateKey, mnemonic *secure.Buffer) *Unlocked {
	return &Unlocked{
		address:    address,
		walletType: walletType,
		privateKey: privateKey,
		mnemonic:   mnemonic,
	}
}

// Address returns the account address. Not secret.
func (u *Unlocked) Address() string {
	return u.address
}

// WalletType returns how the wallet's key material originated.
func (u *Unlocked) WalletType() walletstore.Type {
	return u.walletType
}

// PrivateKey returns the plaintext private key bytes. The slice aliases
// the session's buffer and becomes zeroed when the session is destroyed.
func (u *Unlocked) PrivateKey() []byte {
	if u.privateKey == nil {
		return nil
	}
	return u.privateKey.Bytes()
}

// Mnemonic returns the plaintext mnemonic phrase and whether one exists.
// Imported wallets have none.
func (u *Unlocked) Mnemonic() (string, bool) {
	if u.mnemonic == nil || u.mnemonic.IsDestroyed() {
		return "", false
	}
	return u.mnemonic.String(), true
}

// Destroyed reports whether the session's secrets have been zeroed.
func (u *Unlocked) Destroyed() bool {
	return u.privateKey == nil || u.privateKey.IsDestroyed()
}

// Destroy zeroes all secret material. Safe to call multiple times.
func (u *Unlocked) Destroy() {
	if u == nil {
		return
	}
	if u.privateKey != nil {
		u.privateKey.Destroy()
	}
	if u.mnemonic != nil {
		u.mnemonic.Destroy()
	}
}
