package cryptox

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := deriveKey(password, salt)
	key2 := deriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword([]byte("hunter2"))
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(h, "$"))

	ok, err := VerifyPassword([]byte("hunter2"), h)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword([]byte("hunter3"), h)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := HashPassword([]byte("same"))
	require.NoError(t, err)
	h2, err := HashPassword([]byte("same"))
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, h := range []string{"", "nodollar", "!!$AAAA", "AAAA$!!"} {
		_, err := VerifyPassword([]byte("x"), h)
		require.ErrorIs(t, err, ErrMalformedHash, h)
	}
}
