/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signer provides JWS signers for the key types accepted in operation requests.
package signer

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"

	_ "crypto/sha256" // registers crypto.SHA256

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
)

const bitsInByte = 8

type headers struct {
	alg string
	kid string
}

// Headers provides the JWS protected headers describing the signing key and algorithm.
func (h headers) Headers() jws.Headers {
	result := make(jws.Headers)

	if h.alg != "" {
		result[jws.HeaderAlgorithm] = h.alg
	}

	if h.kid != "" {
		result[jws.HeaderKeyID] = h.kid
	}

	return result
}

// Ed25519 signs with an ed25519 private key.
type Ed25519 struct {
	headers
	privateKey ed25519.PrivateKey
}

// NewEd25519 returns an Ed25519 signer. kid is optional.
func NewEd25519(privKey ed25519.PrivateKey, kid string) *Ed25519 {
	return &Ed25519{headers: headers{alg: jws.AlgorithmEdDSA, kid: kid}, privateKey: privKey}
}

// Sign signs msg and returns the signature value.
func (s *Ed25519) Sign(msg []byte) ([]byte, error) {
	if len(s.privateKey) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid private key size")
	}

	return ed25519.Sign(s.privateKey, msg), nil
}

// ECDSA signs with a P-256 or secp256k1 private key. Signatures are R || S, each padded to the curve size.
type ECDSA struct {
	headers
	privateKey *ecdsa.PrivateKey
}

// NewECDSA returns an ECDSA signer. The algorithm is derived from the curve; kid is optional.
func NewECDSA(privKey *ecdsa.PrivateKey, kid string) *ECDSA {
	alg := jws.AlgorithmES256
	if privKey != nil && privKey.Curve == btcec.S256() {
		alg = jws.AlgorithmES256K
	}

	return &ECDSA{headers: headers{alg: alg, kid: kid}, privateKey: privKey}
}

// Sign signs msg and returns the signature value.
func (s *ECDSA) Sign(msg []byte) ([]byte, error) {
	if s.privateKey == nil {
		return nil, errors.New("private key not provided")
	}

	if s.privateKey.Curve != elliptic.P256() && s.privateKey.Curve != btcec.S256() {
		return nil, errors.Errorf("unsupported elliptic curve %s", s.privateKey.Curve.Params().Name)
	}

	hasher := crypto.SHA256.New()

	if _, err := hasher.Write(msg); err != nil {
		return nil, err
	}

	r, sig, err := ecdsa.Sign(rand.Reader, s.privateKey, hasher.Sum(nil))
	if err != nil {
		return nil, err
	}

	keyBytes := (s.privateKey.Curve.Params().BitSize + bitsInByte - 1) / bitsInByte

	return append(copyPadded(r.Bytes(), keyBytes), copyPadded(sig.Bytes(), keyBytes)...), nil
}

func copyPadded(source []byte, size int) []byte {
	dest := make([]byte, size)
	copy(dest[size-len(source):], source)

	return dest
}
