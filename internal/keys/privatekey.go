package keys

import (
	"encoding/hex"
	"strings"

	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// ValidatePrivateKey checks that the key is exactly 32 bytes of hex
// (with or without a 0x prefix) and a valid secp256k1 scalar.
func ValidatePrivateKey(key string) error {
	kp, err := DeriveFromPrivateKey(key)
	if err != nil {
		return err
	}
	kp.Destroy()
	return nil
}

// DeriveFromPrivateKey validates a raw hex private key and wraps it into
// a Keypair with its derived address. The input string is untouched;
// callers holding it in a zeroable buffer should destroy that buffer.
func DeriveFromPrivateKey(key string) (*Keypair, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(key), "0x")
	if len(trimmed) != privateKeyLength*2 {
		return nil, kerrors.ErrInvalidPrivateKey
	}

	keyBytes, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, kerrors.ErrInvalidPrivateKey
	}

	return keypairFromBytes(keyBytes)
}

// EncodePrivateKey renders a 32-byte private key as 0x-prefixed hex.
// The returned string is secret material; callers display it once and
// discard it.
func EncodePrivateKey(key []byte) string {
	return "0x" + hex.EncodeToString(key)
}
