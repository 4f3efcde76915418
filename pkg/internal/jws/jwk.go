/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"encoding/json"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
	gojose "github.com/square/go-jose/v3"

	"github.com/trustbloc/sidetree-gateway-go/pkg/encoder"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
)

const secp256k1CoordinateSize = 32

// PublicKeyFromJWK converts a JWK into an ed25519.PublicKey or *ecdsa.PublicKey.
// gojose handles Ed25519 and the NIST curves; secp256k1 is decoded with btcec.
func PublicKeyFromJWK(jwk *jws.JWK) (interface{}, error) {
	if jwk == nil {
		return nil, errors.New("missing JWK")
	}

	if err := jwk.Validate(); err != nil {
		return nil, err
	}

	if jwk.Kty == jws.KeyTypeEC && jwk.Crv == jws.CurveSecp256k1 {
		return secp256k1PublicKey(jwk)
	}

	jwkBytes, err := json.Marshal(jwk)
	if err != nil {
		return nil, errors.Wrap(err, "marshal JWK")
	}

	var joseJWK gojose.JSONWebKey

	if err := joseJWK.UnmarshalJSON(jwkBytes); err != nil {
		return nil, errors.Wrap(err, "parse JWK")
	}

	switch key := joseJWK.Key.(type) {
	case ed25519.PublicKey:
		if len(key) != ed25519.PublicKeySize {
			return nil, errors.New("ed25519: invalid key")
		}

		return key, nil
	case *ecdsa.PublicKey:
		return key, nil
	default:
		return nil, errors.Errorf("unsupported public key type %T", joseJWK.Key)
	}
}

// JWKFromPublicKey converts an ed25519 or ECDSA (P-256, secp256k1) public key into a JWK.
func JWKFromPublicKey(pubKey interface{}) (*jws.JWK, error) {
	switch key := pubKey.(type) {
	case ed25519.PublicKey:
		if len(key) != ed25519.PublicKeySize {
			return nil, errors.New("ed25519: invalid key")
		}

		return &jws.JWK{Kty: jws.KeyTypeOKP, Crv: jws.CurveEd25519, X: encoder.EncodeToString(key)}, nil
	case *ecdsa.PublicKey:
		if key.Curve == btcec.S256() {
			return &jws.JWK{
				Kty: jws.KeyTypeEC,
				Crv: jws.CurveSecp256k1,
				X:   encoder.EncodeToString(padded(key.X.Bytes(), secp256k1CoordinateSize)),
				Y:   encoder.EncodeToString(padded(key.Y.Bytes(), secp256k1CoordinateSize)),
			}, nil
		}

		if key.Curve != elliptic.P256() {
			return nil, errors.Errorf("unsupported elliptic curve %s", key.Curve.Params().Name)
		}

		jsonJWK, err := gojose.JSONWebKey{Key: key}.MarshalJSON()
		if err != nil {
			return nil, errors.Wrap(err, "marshal JWK")
		}

		jwk := &jws.JWK{}
		if err := json.Unmarshal(jsonJWK, jwk); err != nil {
			return nil, errors.Wrap(err, "unmarshal JWK")
		}

		return jwk, nil
	default:
		return nil, errors.Errorf("unknown key type %T", pubKey)
	}
}

func secp256k1PublicKey(jwk *jws.JWK) (*ecdsa.PublicKey, error) {
	x, err := encoder.DecodeString(jwk.X)
	if err != nil {
		return nil, errors.Wrap(err, "decode x coordinate")
	}

	y, err := encoder.DecodeString(jwk.Y)
	if err != nil {
		return nil, errors.Wrap(err, "decode y coordinate")
	}

	if len(x) != secp256k1CoordinateSize || len(y) != secp256k1CoordinateSize {
		return nil, errors.New("secp256k1: invalid coordinate size")
	}

	key := &ecdsa.PublicKey{
		Curve: btcec.S256(),
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}

	if !key.Curve.IsOnCurve(key.X, key.Y) {
		return nil, errors.New("secp256k1: point is not on curve")
	}

	return key, nil
}

func padded(source []byte, size int) []byte {
	if len(source) >= size {
		return source
	}

	dest := make([]byte, size)
	copy(dest[size-len(source):], source)

	return dest
}
