package envelope_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelwallet/kestrel/internal/envelope"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	plaintext := []byte("this is secret wallet data")
	password := "strong-passphrase-123" // gitleaks:allow

	env, err := envelope.Encrypt(plaintext, password)
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.NotEqual(t, plaintext, env.Ciphertext)

	decrypted, err := envelope.Decrypt(env, password)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecrypt_WrongPassword(t *testing.T) {
	t.Parallel()
	env, err := envelope.Encrypt([]byte("secret data"), "correct-password")
	require.NoError(t, err)

	plaintext, err := envelope.Decrypt(env, "wrong-password")
	require.Error(t, err)
	assert.True(t, kerrors.Is(err, kerrors.ErrDecryptionFailed))
	assert.Nil(t, plaintext)
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	t.Parallel()
	plaintext := []byte("same plaintext")
	password := "same-password" // gitleaks:allow

	first, err := envelope.Encrypt(plaintext, password)
	require.NoError(t, err)
	second, err := envelope.Encrypt(plaintext, password)
	require.NoError(t, err)

	// Fresh salt and nonce per call mean nothing repeats.
	assert.NotEqual(t, first.KDF.Salt, second.KDF.Salt)
	assert.NotEqual(t, first.Nonce, second.Nonce)
	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
}

func TestDecrypt_TamperedFailsClosed(t *testing.T) {
	t.Parallel()
	password := "correct-password" // gitleaks:allow

	tests := []struct {
		name   string
		mutate func(env *envelope.Envelope)
	}{
		{"flipped ciphertext byte", func(env *envelope.Envelope) {
			env.Ciphertext[0] ^= 0xFF
		}},
		{"flipped nonce byte", func(env *envelope.Envelope) {
			env.Nonce[3] ^= 0x01
		}},
		{"flipped salt byte", func(env *envelope.Envelope) {
			env.KDF.Salt[7] ^= 0x10
		}},
		{"truncated ciphertext", func(env *envelope.Envelope) {
			env.Ciphertext = env.Ciphertext[:len(env.Ciphertext)-1]
		}},
		{"wrong version", func(env *envelope.Envelope) {
			env.Version = 99
		}},
		{"wrong cipher name", func(env *envelope.Envelope) {
			env.Cipher = "rot13"
		}},
		{"zeroed KDF time", func(env *envelope.Envelope) {
			env.KDF.Time = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, err := envelope.Encrypt([]byte("payload"), password)
			require.NoError(t, err)

			tt.mutate(env)

			plaintext, err := envelope.Decrypt(env, password)
			assert.True(t, kerrors.Is(err, kerrors.ErrDecryptionFailed))
			assert.Nil(t, plaintext)
		})
	}
}

func TestDecrypt_NilEnvelope(t *testing.T) {
	t.Parallel()
	_, err := envelope.Decrypt(nil, "password")
	assert.True(t, kerrors.Is(err, kerrors.ErrDecryptionFailed))
}

func TestEncrypt_EmptyPlaintext(t *testing.T) {
	t.Parallel()
	env, err := envelope.Encrypt([]byte{}, "password-123")
	require.NoError(t, err)

	decrypted, err := envelope.Decrypt(env, "password-123")
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestEnvelope_JSONRoundTrip(t *testing.T) {
	t.Parallel()
	env, err := envelope.Encrypt([]byte("persisted secret"), "password-123")
	require.NoError(t, err)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var restored envelope.Envelope
	require.NoError(t, json.Unmarshal(data, &restored))

	decrypted, err := envelope.Decrypt(&restored, "password-123")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted secret"), decrypted)
}

func TestDecryptSecure(t *testing.T) {
	t.Parallel()
	env, err := envelope.Encrypt([]byte("buffered secret"), "password-123")
	require.NoError(t, err)

	buf, err := envelope.DecryptSecure(env, "password-123")
	require.NoError(t, err)
	defer buf.Destroy()

	assert.Equal(t, []byte("buffered secret"), buf.Bytes())
}
