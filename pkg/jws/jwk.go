/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import "errors"

// Key types and curves accepted in operation keys.
const (
	KeyTypeEC  = "EC"
	KeyTypeOKP = "OKP"

	CurveEd25519   = "Ed25519"
	CurveP256      = "P-256"
	CurveSecp256k1 = "secp256k1"
)

// JWK contains a public key in JWK format.
type JWK struct {
	Kty   string `json:"kty"`
	Crv   string `json:"crv"`
	X     string `json:"x"`
	Y     string `json:"y,omitempty"`
	Nonce string `json:"nonce,omitempty"`
}

// Validate validates JWK.
func (jwk *JWK) Validate() error {
	if jwk.Crv == "" {
		return errors.New("JWK crv is missing")
	}

	if jwk.Kty == "" {
		return errors.New("JWK kty is missing")
	}

	if jwk.X == "" {
		return errors.New("JWK x is missing")
	}

	if jwk.Kty == KeyTypeEC && jwk.Y == "" {
		return errors.New("JWK y is missing")
	}

	return nil
}
