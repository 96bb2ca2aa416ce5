package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	require.NoError(t, err)
	require.Len(t, s, n*2)
	_, err = hex.DecodeString(s)
	require.NoError(t, err)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	require.Empty(t, s)
}

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("secret")
	WipeByteArray(buf)
	for i, v := range buf {
		require.Zerof(t, v, "buf[%d]", i)
	}
	WipeByteArray(nil)
}

func TestProviderError_Unwrap(t *testing.T) {
	base := errors.New("connection reset")
	err := fmt.Errorf("load more: %w", &ProviderError{Op: "search", Err: base})

	require.ErrorIs(t, err, base)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "search", pe.Op)
	require.Equal(t, "provider search: connection reset", pe.Error())
}

func TestRemoteError_Unwrap(t *testing.T) {
	err := &RemoteError{Op: "delete", Err: ErrorUnauthorized}

	require.ErrorIs(t, err, ErrorUnauthorized)
	require.Equal(t, "remote delete: unauthorized", err.Error())
}
