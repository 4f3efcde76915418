/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gzip

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlgorithm_Accept(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		alg := New()
		require.True(t, alg.Accept("GZIP"))
		require.False(t, alg.Accept("other"))
	})
}

func TestAlgorithm_Compress(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		alg := New()

		test := []byte("test data")
		compressed, err := alg.Compress(test)
		require.NoError(t, err)
		require.NotEmpty(t, compressed)

		data, err := alg.Decompress(compressed)
		require.NoError(t, err)
		require.NotEmpty(t, data)
		require.Equal(t, data, test)
	})
	t.Run("deterministic output", func(t *testing.T) {
		alg := New()

		first, err := alg.Compress([]byte("hello data"))
		require.NoError(t, err)

		second, err := alg.Compress([]byte("hello data"))
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}

func TestAlgorithm_Decompress(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		alg := New()

		test := []byte("hello world")
		compressed, err := alg.Compress(test)
		require.NoError(t, err)
		require.NotEmpty(t, compressed)

		data, err := alg.Decompress(compressed)
		require.NoError(t, err)
		require.NotEmpty(t, data)
		require.Equal(t, data, test)
	})
	t.Run("error - data not compressed", func(t *testing.T) {
		alg := New()

		test := []byte("test data")
		data, err := alg.Decompress(test)
		require.Error(t, err)
		require.Empty(t, data)
		require.Contains(t, err.Error(), "failed to create new reader")
	})
	t.Run("error - exceeds maximum decompressed size", func(t *testing.T) {
		compressed, err := New().Compress(bytes.Repeat([]byte("a"), 1000))
		require.NoError(t, err)

		data, err := New(WithMaxDecompressedSize(999)).Decompress(compressed)
		require.Error(t, err)
		require.Nil(t, data)
		require.Contains(t, err.Error(), "exceeds maximum size 999")

		data, err = New(WithMaxDecompressedSize(1000)).Decompress(compressed)
		require.NoError(t, err)
		require.Len(t, data, 1000)
	})
}

func TestAlgorithm_Close(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		alg := New()
		require.NoError(t, alg.Close())
	})
}
