package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionKey(t *testing.T) {
	t.Parallel()

	a, err := GenerateSessionKey()
	require.NoError(t, err)
	assert.Len(t, a, 32)

	b, err := GenerateSessionKey()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestWrapUnwrapSessionKey(t *testing.T) {
	t.Parallel()

	priv, err := GenerateHandshakeKey()
	require.NoError(t, err)

	key, err := GenerateSessionKey()
	require.NoError(t, err)

	wrapped, err := WrapSessionKey(&priv.PublicKey, key)
	require.NoError(t, err)
	assert.NotEqual(t, key, wrapped)

	got, err := UnwrapSessionKey(priv, wrapped)
	require.NoError(t, err)
	assert.Equal(t, key, got)

	other, err := GenerateHandshakeKey()
	require.NoError(t, err)
	if _, err := UnwrapSessionKey(other, wrapped); err == nil {
		t.Error("unwrap under the wrong private key did not fail")
	}
}

func TestPublicKeyRoundTrip(t *testing.T) {
	t.Parallel()

	priv, err := GenerateHandshakeKey()
	require.NoError(t, err)

	der, err := MarshalPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	pub, err := ParsePublicKey(der)
	require.NoError(t, err)
	assert.True(t, pub.Equal(&priv.PublicKey))

	if _, err := ParsePublicKey([]byte("not a key")); err == nil {
		t.Error("ParsePublicKey accepted garbage")
	}
}

func TestGenerateVerificationCode(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, VerificationCodeLength)

		for j, r := range code {
			isDigit := r >= '0' && r <= '9'
			isUpper := r >= 'A' && r <= 'Z'
			if !isDigit && !isUpper {
				t.Fatalf("code %q has invalid character at %d", code, j)
			}
			// The third position always carries a digit so codes are
			// never mistaken for words.
			if j == 2 && !isDigit {
				t.Fatalf("code %q has no digit at index 2", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 40 {
		t.Errorf("only %d distinct codes out of 50", len(seen))
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, SaltSize)

	hash := HashPassword("correct horse", salt)
	assert.True(t, VerifyPassword("correct horse", salt, hash))
	assert.False(t, VerifyPassword("wrong horse", salt, hash))

	otherSalt, err := NewSalt()
	require.NoError(t, err)
	otherHash := HashPassword("correct horse", otherSalt)
	assert.NotEqual(t, hash, otherHash, "same password under different salts must differ")
	assert.False(t, VerifyPassword("correct horse", otherSalt, hash))
}
