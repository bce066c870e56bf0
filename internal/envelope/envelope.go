// Package envelope implements password-based envelope encryption for
// wallet secrets. A plaintext secret and a password go in; an opaque,
// self-describing encrypted blob comes out. The envelope carries its own
// per-encryption salt, nonce, and KDF cost parameters, so encrypting the
// same plaintext twice never produces the same ciphertext.
//
// The key is derived with argon2id and the payload sealed with
// AES-256-GCM. A wrong password, a tampered blob, and a corrupted blob
// all fail with the same error; no partial plaintext is ever returned.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/argon2"

	"github.com/kestrelwallet/kestrel/internal/secure"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

const (
	// FormatVersion is the current envelope format version.
	FormatVersion = 1

	// cipherName identifies the AEAD used to seal the payload.
	cipherName = "aes-256-gcm"

	// kdfName identifies the key derivation function.
	kdfName = "argon2id"

	saltLength  = 32
	nonceLength = 12
	keyLength   = 32

	// argon2id cost parameters.
	kdfTime    = 3
	kdfMemory  = 64 * 1024 // KiB
	kdfThreads = 4
)

// KDFParams records the argon2id parameters used for a single encryption.
// The salt is fresh per envelope.
type KDFParams struct {
	Function string `json:"function"`
	Time     uint32 `json:"time"`
	Memory   uint32 `json:"memory"`
	Threads  uint8  `json:"threads"`
	Salt     []byte `json:"salt"`
}

// Envelope is an opaque encrypted blob: ciphertext (with the GCM tag
// appended), nonce, and the KDF parameters needed to re-derive the key.
// It is never interpretable without the correct password.
type Envelope struct {
	Version    int       `json:"version"`
	Cipher     string    `json:"cipher"`
	KDF        KDFParams `json:"kdf"`
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
}

// Encrypt seals plaintext under the given password with a fresh random
// salt and nonce. The password exists only on the call stack.
func Encrypt(plaintext []byte, password string) (*Envelope, error) {
	salt, err := secure.RandomBytes(saltLength)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrEncryptionFailed, "generating salt")
	}

	nonce, err := secure.RandomBytes(nonceLength)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrEncryptionFailed, "generating nonce")
	}

	key := argon2.IDKey([]byte(password), salt, kdfTime, kdfMemory, kdfThreads, keyLength)
	defer secure.Zero(key)

	aead, err := newAEAD(key)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrEncryptionFailed, "initializing cipher")
	}

	return &Envelope{
		Version: FormatVersion,
		Cipher:  cipherName,
		KDF: KDFParams{
			Function: kdfName,
			Time:     kdfTime,
			Memory:   kdfMemory,
			Threads:  kdfThreads,
			Salt:     salt,
		},
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Decrypt opens the envelope with the given password. It fails with
// ErrDecryptionFailed if the password is wrong or the envelope is
// corrupted or tampered with; the failure modes are indistinguishable.
func Decrypt(env *Envelope, password string) ([]byte, error) {
	if err := validate(env); err != nil {
		return nil, err
	}

	key := argon2.IDKey([]byte(password), env.KDF.Salt,
		env.KDF.Time, env.KDF.Memory, env.KDF.Threads, keyLength)
	defer secure.Zero(key)

	aead, err := newAEAD(key)
	if err != nil {
		return nil, kerrors.ErrDecryptionFailed
	}

	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		// GCM tag check failed: wrong password or tampered data.
		return nil, kerrors.ErrDecryptionFailed
	}

	return plaintext, nil
}

// DecryptSecure opens the envelope into a secure buffer, leaving no
// unmanaged plaintext copy behind.
func DecryptSecure(env *Envelope, password string) (*secure.Buffer, error) {
	plaintext, err := Decrypt(env, password)
	if err != nil {
		return nil, err
	}
	return secure.FromSlice(plaintext), nil
}

// validate rejects structurally broken envelopes before any key
// derivation happens. All rejections fail closed as decryption failures.
func validate(env *Envelope) error {
	if env == nil ||
		env.Version != FormatVersion ||
		env.Cipher != cipherName ||
		env.KDF.Function != kdfName ||
		env.KDF.Time == 0 ||
		env.KDF.Memory == 0 ||
		env.KDF.Threads == 0 ||
		len(env.KDF.Salt) != saltLength ||
		len(env.Nonce) != nonceLength ||
		len(env.Ciphertext) == 0 {
		return kerrors.ErrDecryptionFailed
	}
	return nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
