package secretbox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestNewAESGCM(t *testing.T) {
	_, err := NewAESGCM(make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = NewAESGCM(testKey())
	assert.NoError(t, err)
}

func TestSealOpen(t *testing.T) {
	sealer, err := NewAESGCM(testKey())
	require.NoError(t, err)

	plaintext := []byte(`{"account_name":"alice"}`)
	steamID := "76561198000000001"

	t.Run("Roundtrip", func(t *testing.T) {
		sealed, err := sealer.Seal(plaintext, steamID)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, sealed)

		opened, err := sealer.Open(sealed, steamID)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	})

	t.Run("BoundToSteamID", func(t *testing.T) {
		sealed, err := sealer.Seal(plaintext, steamID)
		require.NoError(t, err)

		_, err = sealer.Open(sealed, "76561198000000002")
		assert.ErrorIs(t, err, ErrOpenFailed)
	})

	t.Run("TamperedCiphertext", func(t *testing.T) {
		sealed, err := sealer.Seal(plaintext, steamID)
		require.NoError(t, err)

		sealed[len(sealed)-1] ^= 0xFF
		_, err = sealer.Open(sealed, steamID)
		assert.ErrorIs(t, err, ErrOpenFailed)
	})

	t.Run("WrongKey", func(t *testing.T) {
		sealed, err := sealer.Seal(plaintext, steamID)
		require.NoError(t, err)

		other, err := NewAESGCM(bytes.Repeat([]byte{0x24}, 32))
		require.NoError(t, err)

		_, err = other.Open(sealed, steamID)
		assert.ErrorIs(t, err, ErrOpenFailed)
	})

	t.Run("EmptyPlaintext", func(t *testing.T) {
		_, err := sealer.Seal(nil, steamID)
		assert.ErrorIs(t, err, ErrPlaintextEmpty)
	})

	t.Run("TruncatedCiphertext", func(t *testing.T) {
		_, err := sealer.Open([]byte{0, 1, 2}, steamID)
		assert.ErrorIs(t, err, ErrCiphertextTooShort)
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		sealed, err := sealer.Seal(plaintext, steamID)
		require.NoError(t, err)

		sealed[0] = 0xFF
		_, err = sealer.Open(sealed, steamID)
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})
}
