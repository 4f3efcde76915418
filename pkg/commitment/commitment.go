/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package commitment computes reveal values and commitments for operation keys.
//
// The reveal value of a key is the multihash of its canonical JWK. The commitment is the
// multihash of the reveal value's digest, so a commitment can be checked against a reveal
// value without knowing the key.
package commitment

import (
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/encoder"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
)

// ErrMismatch is returned when a reveal value is not the preimage of a commitment.
var ErrMismatch = errors.New("reveal value doesn't match commitment")

// GetRevealValue returns the reveal value of the key.
func GetRevealValue(jwk *jws.JWK, multihashCode uint) (string, error) {
	if jwk == nil {
		return "", errors.New("missing JWK")
	}

	data, err := canonicalizer.MarshalCanonical(jwk)
	if err != nil {
		return "", errors.Wrap(err, "canonicalize JWK")
	}

	return hashing.CalculateMultihash(multihashCode, data)
}

// GetCommitment returns the commitment to the key.
func GetCommitment(jwk *jws.JWK, multihashCode uint) (string, error) {
	revealValue, err := GetRevealValue(jwk, multihashCode)
	if err != nil {
		return "", err
	}

	return GetCommitmentFromRevealValue(revealValue)
}

// GetCommitmentFromRevealValue returns the commitment that the reveal value opens. The hash
// algorithm of the reveal value is used for the commitment.
func GetCommitmentFromRevealValue(revealValue string) (string, error) {
	mh, err := hashing.DecodeMultihash(revealValue)
	if err != nil {
		return "", errors.Wrap(err, "reveal value")
	}

	commitment, err := hashing.ComputeMultihash(uint(mh.Code), mh.Digest)
	if err != nil {
		return "", err
	}

	return encoder.EncodeToString(commitment), nil
}

// Verify checks that the reveal value is the preimage of the commitment.
func Verify(revealValue, commitment string) error {
	computed, err := GetCommitmentFromRevealValue(revealValue)
	if err != nil {
		return err
	}

	if computed != commitment {
		return ErrMismatch
	}

	return nil
}

// VerifyKey checks that the key is the one behind the reveal value.
func VerifyKey(jwk *jws.JWK, revealValue string) error {
	code, err := hashing.GetMultihashCode(revealValue)
	if err != nil {
		return errors.Wrap(err, "reveal value")
	}

	computed, err := GetRevealValue(jwk, uint(code))
	if err != nil {
		return err
	}

	if computed != revealValue {
		return errors.New("reveal value doesn't match signing key")
	}

	return nil
}
