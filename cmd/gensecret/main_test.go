package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_generate(t *testing.T) {
	first, err := generate()
	require.NoError(t, err)
	second, err := generate()
	require.NoError(t, err)

	require.Len(t, first, 2*SecretKeyBytesLen, "hex doubles the length")
	require.NotEqual(t, first, second)
}
