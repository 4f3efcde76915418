/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/encoder"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/util/signer"
)

var payload = []byte(`{"deltaHash":"EiAbc"}`)

func TestSignAndVerify(t *testing.T) {
	t.Run("success - Ed25519", func(t *testing.T) {
		publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		jwk, err := JWKFromPublicKey(publicKey)
		require.NoError(t, err)

		verifyRoundTrip(t, signer.NewEd25519(privateKey, "kid"), jwk)
	})

	t.Run("success - P-256", func(t *testing.T) {
		privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		jwk, err := JWKFromPublicKey(&privateKey.PublicKey)
		require.NoError(t, err)
		require.Equal(t, jws.CurveP256, jwk.Crv)

		verifyRoundTrip(t, signer.NewECDSA(privateKey, ""), jwk)
	})

	t.Run("success - secp256k1", func(t *testing.T) {
		privateKey, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
		require.NoError(t, err)

		jwk, err := JWKFromPublicKey(&privateKey.PublicKey)
		require.NoError(t, err)
		require.Equal(t, jws.CurveSecp256k1, jwk.Crv)

		verifyRoundTrip(t, signer.NewECDSA(privateKey, ""), jwk)
	})

	t.Run("error - wrong key", func(t *testing.T) {
		_, privateKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		otherPublicKey, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		jwk, err := JWKFromPublicKey(otherPublicKey)
		require.NoError(t, err)

		compact, err := SignCompact(nil, payload, signer.NewEd25519(privateKey, ""))
		require.NoError(t, err)

		_, err = VerifyJWS(compact, jwk)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrInvalidSignature))
	})

	t.Run("error - tampered payload", func(t *testing.T) {
		privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		jwk, err := JWKFromPublicKey(&privateKey.PublicKey)
		require.NoError(t, err)

		compact, err := SignCompact(nil, payload, signer.NewECDSA(privateKey, ""))
		require.NoError(t, err)

		parts := strings.Split(compact, ".")
		parts[1] = encoder.EncodeToString([]byte(`{"deltaHash":"other"}`))

		_, err = VerifyJWS(strings.Join(parts, "."), jwk)
		require.True(t, errors.Is(err, ErrInvalidSignature))
	})

	t.Run("error - signer without algorithm", func(t *testing.T) {
		_, err := SignCompact(nil, payload, &mockSigner{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "alg JWS header is not defined")
	})

	t.Run("error - signer error", func(t *testing.T) {
		_, err := SignCompact(jws.Headers{jws.HeaderAlgorithm: "EdDSA"}, payload, &mockSigner{err: errors.New("sign error")})
		require.Error(t, err)
		require.Contains(t, err.Error(), "sign error")
	})
}

func TestParseJWS(t *testing.T) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	compact, err := SignCompact(jws.Headers{"custom": "value"}, payload, signer.NewEd25519(privateKey, "kid"))
	require.NoError(t, err)
	require.True(t, IsCompactJWS(compact))

	t.Run("success", func(t *testing.T) {
		parsed, err := ParseJWS(compact)
		require.NoError(t, err)
		require.Equal(t, payload, parsed.Payload)
		require.Equal(t, "value", parsed.ProtectedHeaders["custom"])
		require.NotEmpty(t, parsed.Signature())

		kid, ok := parsed.ProtectedHeaders.KeyID()
		require.True(t, ok)
		require.Equal(t, "kid", kid)
	})

	parts := strings.Split(compact, ".")

	tests := []struct {
		name  string
		input string
		err   string
	}{
		{name: "json serialization", input: "{}", err: "JWS JSON serialization is not supported"},
		{name: "wrong number of parts", input: "a.b", err: "invalid JWS compact format"},
		{name: "bad header encoding", input: "!." + parts[1] + "." + parts[2], err: "decode base64 header"},
		{
			name:  "bad header json",
			input: encoder.EncodeToString([]byte("[")) + "." + parts[1] + "." + parts[2],
			err:   "unmarshal JSON headers",
		},
		{
			name:  "missing alg",
			input: encoder.EncodeToString([]byte("{}")) + "." + parts[1] + "." + parts[2],
			err:   "alg JWS header is not defined",
		},
		{name: "bad payload encoding", input: parts[0] + ".!." + parts[2], err: "decode base64 payload"},
		{name: "empty payload", input: parts[0] + ".." + parts[2], err: "payload is empty"},
		{name: "bad signature encoding", input: parts[0] + "." + parts[1] + ".!", err: "decode base64 signature"},
		{name: "empty signature", input: parts[0] + "." + parts[1] + ".", err: "signature is empty"},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJWS(tc.input)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.err)
		})
	}
}

func verifyRoundTrip(t *testing.T, s Signer, jwk *jws.JWK) {
	t.Helper()

	compact, err := SignCompact(nil, payload, s)
	require.NoError(t, err)

	parsed, err := VerifyJWS(compact, jwk)
	require.NoError(t, err)
	require.Equal(t, payload, parsed.Payload)

	alg, ok := parsed.ProtectedHeaders.Algorithm()
	require.True(t, ok)
	require.Equal(t, s.Headers()[jws.HeaderAlgorithm], alg)
}

type mockSigner struct {
	err error
}

func (s *mockSigner) Sign([]byte) ([]byte, error) {
	return []byte("signature"), s.err
}

func (s *mockSigner) Headers() jws.Headers {
	return jws.Headers{}
}
