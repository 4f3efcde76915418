/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		jwk := JWK{
			Kty: KeyTypeOKP,
			Crv: CurveEd25519,
			X:   "x",
		}

		require.NoError(t, jwk.Validate())
	})

	t.Run("missing kty", func(t *testing.T) {
		jwk := JWK{
			Crv: "crv",
			X:   "x",
		}

		err := jwk.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "kty is missing")
	})

	t.Run("missing crv", func(t *testing.T) {
		jwk := JWK{
			Kty: "kty",
			X:   "x",
		}

		err := jwk.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "crv is missing")
	})

	t.Run("missing x", func(t *testing.T) {
		jwk := JWK{
			Kty: "kty",
			Crv: "crv",
		}

		err := jwk.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "x is missing")
	})

	t.Run("EC key - missing y", func(t *testing.T) {
		jwk := JWK{
			Kty: KeyTypeEC,
			Crv: CurveP256,
			X:   "x",
		}

		err := jwk.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "y is missing")
	})
}

func TestHeaders(t *testing.T) {
	headers := Headers{
		HeaderAlgorithm: AlgorithmEdDSA,
		HeaderKeyID:     1,
	}

	alg, ok := headers.Algorithm()
	require.True(t, ok)
	require.Equal(t, AlgorithmEdDSA, alg)

	_, ok = headers.KeyID()
	require.False(t, ok)

	_, ok = Headers{}.Algorithm()
	require.False(t, ok)
}
