package keys

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/kestrelwallet/kestrel/internal/secure"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// BIP44 path constants for the single derived account: m/44'/60'/0'/0/0.
const (
	bip44Purpose  = 44
	bip44CoinType = 60 // Ethereum
	bip44Account  = 0
	bip44Change   = 0 // External chain
	bip44Index    = 0
)

// DerivationPath is the fixed hierarchical path for every HD wallet.
const DerivationPath = "m/44'/60'/0'/0/0"

// privateKeyLength is the secp256k1 private key size in bytes.
const privateKeyLength = 32

// Keypair holds a derived account. PrivateKey is plaintext secret
// material; callers must call Destroy as soon as it has been consumed.
type Keypair struct {
	// Address is the EIP-55 checksummed account address.
	Address string

	// PrivateKey is the 32-byte secp256k1 private key.
	PrivateKey *secure.Buffer
}

// Destroy zeroes the keypair's secret material.
func (k *Keypair) Destroy() {
	if k != nil && k.PrivateKey != nil {
		k.PrivateKey.Destroy()
	}
}

// DeriveFromMnemonic validates the phrase and deterministically derives
// exactly one account at m/44'/60'/0'/0/0. The same phrase always yields
// the same address and private key; the unlock integrity check depends
// on that.
func DeriveFromMnemonic(phrase string) (*Keypair, error) {
	if err := ValidateMnemonic(phrase); err != nil {
		return nil, err
	}

	normalized := NormalizeMnemonic(phrase)
	seed := bip39.NewSeed(normalized, "")
	defer secure.Zero(seed)

	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrInvalidMnemonic, "deriving master key")
	}

	child := master
	for _, step := range []uint32{
		bip32.FirstHardenedChild + bip44Purpose,
		bip32.FirstHardenedChild + bip44CoinType,
		bip32.FirstHardenedChild + bip44Account,
		bip44Change,
		bip44Index,
	} {
		child, err = child.NewChildKey(step)
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrInvalidMnemonic, "deriving child key")
		}
	}

	keyBytes := make([]byte, privateKeyLength)
	copy(keyBytes[privateKeyLength-len(child.Key):], child.Key)

	return keypairFromBytes(keyBytes)
}

// AddressFromPrivateKey re-derives the account address from a 32-byte
// private key. Used by the unlock integrity check to verify that stored
// ciphertext still matches the stored address.
func AddressFromPrivateKey(key []byte) (string, error) {
	priv, err := ethcrypto.ToECDSA(key)
	if err != nil {
		return "", kerrors.ErrInvalidPrivateKey
	}
	return ethcrypto.PubkeyToAddress(priv.PublicKey).Hex(), nil
}

// keypairFromBytes wraps 32 raw key bytes into a Keypair, validating the
// scalar against the curve order. Takes ownership of keyBytes and zeroes
// it on failure.
func keypairFromBytes(keyBytes []byte) (*Keypair, error) {
	priv, err := ethcrypto.ToECDSA(keyBytes)
	if err != nil {
		secure.Zero(keyBytes)
		return nil, kerrors.ErrInvalidPrivateKey
	}

	address := ethcrypto.PubkeyToAddress(priv.PublicKey).Hex()

	return &Keypair{
		Address:    address,
		PrivateKey: secure.FromSlice(keyBytes),
	}, nil
}
