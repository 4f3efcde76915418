/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package commitment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
)

const (
	sha2_256 uint = 18
	sha3_256 uint = 22
)

func TestCommitment(t *testing.T) {
	jwk := &jws.JWK{
		Crv: "crv",
		Kty: "kty",
		X:   "x",
		Y:   "y",
	}

	t.Run("success", func(t *testing.T) {
		for _, code := range []uint{sha2_256, sha3_256} {
			revealValue, err := GetRevealValue(jwk, code)
			require.NoError(t, err)

			c, err := GetCommitment(jwk, code)
			require.NoError(t, err)
			require.NotEqual(t, revealValue, c)

			require.NoError(t, Verify(revealValue, c))
			require.NoError(t, VerifyKey(jwk, revealValue))
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		c, err := GetCommitment(jwk, sha2_256)
		require.NoError(t, err)

		otherRevealValue, err := GetRevealValue(&jws.JWK{Crv: "crv", Kty: "kty", X: "other"}, sha2_256)
		require.NoError(t, err)

		require.ErrorIs(t, Verify(otherRevealValue, c), ErrMismatch)

		err = VerifyKey(&jws.JWK{Crv: "crv", Kty: "kty", X: "other"}, c)
		require.Error(t, err)
		require.Contains(t, err.Error(), "doesn't match signing key")
	})

	t.Run("error - multihash not supported", func(t *testing.T) {
		c, err := GetCommitment(jwk, 55)
		require.Error(t, err)
		require.Empty(t, c)
		require.Contains(t, err.Error(), "algorithm not supported, unable to compute hash")
	})

	t.Run("error - missing JWK", func(t *testing.T) {
		_, err := GetRevealValue(nil, sha2_256)
		require.Error(t, err)
	})

	t.Run("error - invalid reveal value", func(t *testing.T) {
		err := Verify("invalid", "commitment")
		require.Error(t, err)
		require.Contains(t, err.Error(), "reveal value")

		require.Error(t, VerifyKey(jwk, "invalid"))
	})
}
