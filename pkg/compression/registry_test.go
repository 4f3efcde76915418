/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package compression

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/compression/gzip"
)

const algGZIP = "GZIP"

func TestRegistry_RoundTrip(t *testing.T) {
	batchFile := bytes.Repeat([]byte(`{"type":"create","suffixData":{}}`), 20)

	for name, registry := range map[string]*Registry{
		"explicit algorithm": New(WithAlgorithm(gzip.New())),
		"default algorithms": New(WithDefaultAlgorithms(uint(len(batchFile)))),
	} {
		t.Run(name, func(t *testing.T) {
			compressed, err := registry.Compress(algGZIP, batchFile)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(batchFile))

			data, err := registry.Decompress(algGZIP, compressed)
			require.NoError(t, err)
			require.Equal(t, batchFile, data)

			require.NoError(t, registry.Close())
		})
	}
}

func TestRegistry_MaxDecompressedSize(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 1000)

	compressed, err := New(WithDefaultAlgorithms(0)).Compress(algGZIP, data)
	require.NoError(t, err)

	t.Run("unbounded", func(t *testing.T) {
		decompressed, err := New(WithDefaultAlgorithms(0)).Decompress(algGZIP, compressed)
		require.NoError(t, err)
		require.Len(t, decompressed, len(data))
	})

	t.Run("exceeded", func(t *testing.T) {
		decompressed, err := New(WithDefaultAlgorithms(999)).Decompress(algGZIP, compressed)
		require.Error(t, err)
		require.Nil(t, decompressed)
		require.Contains(t, err.Error(), "decompression failed for alg[GZIP]")
		require.Contains(t, err.Error(), "exceeds maximum size 999")
	})
}

func TestRegistry_Errors(t *testing.T) {
	injected := errors.New("injected algorithm error")

	t.Run("algorithm not supported", func(t *testing.T) {
		registry := New(WithAlgorithm(gzip.New()))

		_, err := registry.Compress("LZ4", []byte("data"))
		require.EqualError(t, err, "compression algorithm 'LZ4' not supported")

		_, err = New().Decompress(algGZIP, []byte("data"))
		require.EqualError(t, err, "compression algorithm 'GZIP' not supported")
	})

	t.Run("compress", func(t *testing.T) {
		_, err := New(WithAlgorithm(&mockAlgorithm{compressErr: injected})).Compress(algGZIP, []byte("data"))
		require.ErrorIs(t, err, injected)
		require.Contains(t, err.Error(), "compression failed for algorithm[GZIP]")
	})

	t.Run("decompress", func(t *testing.T) {
		_, err := New(WithAlgorithm(&mockAlgorithm{decompressErr: injected})).Decompress(algGZIP, []byte("data"))
		require.ErrorIs(t, err, injected)
	})

	t.Run("corrupt input", func(t *testing.T) {
		_, err := New(WithDefaultAlgorithms(0)).Decompress(algGZIP, []byte("not gzip"))
		require.Error(t, err)
	})

	t.Run("close", func(t *testing.T) {
		registry := New(WithAlgorithm(gzip.New()), WithAlgorithm(&mockAlgorithm{closeErr: injected}))
		require.ErrorIs(t, registry.Close(), injected)
	})
}

type mockAlgorithm struct {
	compressErr   error
	decompressErr error
	closeErr      error
}

func (m *mockAlgorithm) Compress(data []byte) ([]byte, error) {
	return data, m.compressErr
}

func (m *mockAlgorithm) Decompress(data []byte) ([]byte, error) {
	return data, m.decompressErr
}

func (m *mockAlgorithm) Accept(string) bool {
	return true
}

func (m *mockAlgorithm) Close() error {
	return m.closeErr
}
