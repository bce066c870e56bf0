package keys_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelwallet/kestrel/internal/keys"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// Known BIP44 vector for the standard test phrase at m/44'/60'/0'/0/0.
const (
	testVectorAddress    = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	testVectorPrivateKey = "0x1ab42cc412b618bdea3a599e3c9bae199ebf030895b039e9db1e30dafb12b727"
)

func TestDeriveFromMnemonic_KnownVector(t *testing.T) {
	t.Parallel()
	kp, err := keys.DeriveFromMnemonic(testMnemonic)
	require.NoError(t, err)
	defer kp.Destroy()

	assert.Equal(t, testVectorAddress, kp.Address)
	assert.Equal(t, testVectorPrivateKey, keys.EncodePrivateKey(kp.PrivateKey.Bytes()))
}

func TestDeriveFromMnemonic_Deterministic(t *testing.T) {
	t.Parallel()
	first, err := keys.DeriveFromMnemonic(testMnemonic)
	require.NoError(t, err)
	defer first.Destroy()

	second, err := keys.DeriveFromMnemonic(testMnemonic)
	require.NoError(t, err)
	defer second.Destroy()

	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.PrivateKey.Bytes(), second.PrivateKey.Bytes())
}

func TestDeriveFromMnemonic_NormalizationInvariant(t *testing.T) {
	t.Parallel()
	noisy := "  " + strings.ToUpper(testMnemonic[:7]) + testMnemonic[7:] + "\n"
	kp, err := keys.DeriveFromMnemonic(noisy)
	require.NoError(t, err)
	defer kp.Destroy()

	assert.Equal(t, testVectorAddress, kp.Address)
}

func TestDeriveFromMnemonic_FreshPhrase(t *testing.T) {
	t.Parallel()
	mnemonic, err := keys.GenerateMnemonic()
	require.NoError(t, err)

	kp, err := keys.DeriveFromMnemonic(mnemonic)
	require.NoError(t, err)
	defer kp.Destroy()

	assert.Len(t, kp.PrivateKey.Bytes(), 32)
	assert.Len(t, kp.Address, 42)
	assert.True(t, strings.HasPrefix(kp.Address, "0x"))
}

func TestDeriveFromMnemonic_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		phrase string
	}{
		{"empty", ""},
		{"five words", "one two three four five"},
		{"bad checksum", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp, err := keys.DeriveFromMnemonic(tt.phrase)
			assert.True(t, kerrors.Is(err, kerrors.ErrInvalidMnemonic))
			assert.Nil(t, kp)
		})
	}
}

func TestAddressFromPrivateKey_MatchesDerivation(t *testing.T) {
	t.Parallel()
	kp, err := keys.DeriveFromMnemonic(testMnemonic)
	require.NoError(t, err)
	defer kp.Destroy()

	addr, err := keys.AddressFromPrivateKey(kp.PrivateKey.Bytes())
	require.NoError(t, err)
	assert.Equal(t, kp.Address, addr)
}
