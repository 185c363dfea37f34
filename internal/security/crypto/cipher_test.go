package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := New("unit-test-secret")
	require.NoError(t, err)

	plaintexts := []string{
		"pw123",
		"",
		"a much longer password with spaces and symbols !@#$%^&*()",
		"sénha-çom-acentos",
	}

	for _, p := range plaintexts {
		blob, err := c.Encrypt(p)
		require.NoError(t, err)

		got, err := c.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	c, err := New("unit-test-secret")
	require.NoError(t, err)

	first, err := c.Encrypt("same-plaintext")
	require.NoError(t, err)
	second, err := c.Encrypt("same-plaintext")
	require.NoError(t, err)

	// fresh random IV per call
	assert.NotEqual(t, first, second)
}

func TestDecryptDetectsTampering(t *testing.T) {
	c, err := New("unit-test-secret")
	require.NoError(t, err)

	blob, err := c.Encrypt("pw123")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	// flip one bit in every position of the ciphertext portion
	for i := ivSize; i < len(raw); i++ {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		_, err := c.Decrypt(base64.StdEncoding.EncodeToString(tampered))
		assert.ErrorIs(t, err, ErrDecrypt, "byte %d", i)
	}
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	c, err := New("unit-test-secret")
	require.NoError(t, err)

	cases := map[string]string{
		"not base64":      "%%%not-base64%%%",
		"empty":           "",
		"shorter than iv": base64.StdEncoding.EncodeToString([]byte("short")),
	}

	for name, in := range cases {
		_, err := c.Decrypt(in)
		assert.ErrorIs(t, err, ErrDecrypt, name)
	}
}

func TestDecryptWithDifferentSecretFails(t *testing.T) {
	a, err := New("secret-a")
	require.NoError(t, err)
	b, err := New("secret-b")
	require.NoError(t, err)

	blob, err := a.Encrypt("pw123")
	require.NoError(t, err)

	_, err = b.Decrypt(blob)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
