/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"math/big"

	_ "crypto/sha256" // registers crypto.SHA256

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
)

const (
	p256KeySize      = 32
	secp256k1KeySize = 32
)

// ErrInvalidSignature is returned when a signature does not verify against the key.
var ErrInvalidSignature = errors.New("invalid signature")

// VerifySignature verifies signature against public key in JWK format.
func VerifySignature(jwk *jws.JWK, signature, msg []byte) error {
	pubKey, err := PublicKeyFromJWK(jwk)
	if err != nil {
		return err
	}

	switch key := pubKey.(type) {
	case ed25519.PublicKey:
		if !ed25519.Verify(key, msg, signature) {
			return errors.Wrap(ErrInvalidSignature, "ed25519")
		}

		return nil
	case *ecdsa.PublicKey:
		return verifyECSignature(key, signature, msg)
	default:
		return errors.Errorf("'%s' key type is not supported for verifying signature", jwk.Kty)
	}
}

func verifyECSignature(pubKey *ecdsa.PublicKey, signature, msg []byte) error {
	ec := parseEllipticCurve(pubKey.Curve)
	if ec == nil {
		return errors.Errorf("ecdsa: unsupported elliptic curve '%s'", pubKey.Curve.Params().Name)
	}

	if len(signature) != 2*ec.keySize {
		return errors.New("ecdsa: invalid signature size")
	}

	hasher := ec.hash.New()

	if _, err := hasher.Write(msg); err != nil {
		return errors.Wrap(err, "ecdsa: hash error")
	}

	r := new(big.Int).SetBytes(signature[:ec.keySize])
	s := new(big.Int).SetBytes(signature[ec.keySize:])

	if !ecdsa.Verify(pubKey, hasher.Sum(nil), r, s) {
		return errors.Wrap(ErrInvalidSignature, "ecdsa")
	}

	return nil
}

type ellipticCurve struct {
	keySize int
	hash    crypto.Hash
}

func parseEllipticCurve(curve elliptic.Curve) *ellipticCurve {
	switch curve {
	case elliptic.P256():
		return &ellipticCurve{keySize: p256KeySize, hash: crypto.SHA256}
	case btcec.S256():
		return &ellipticCurve{keySize: secp256k1KeySize, hash: crypto.SHA256}
	default:
		return nil
	}
}
