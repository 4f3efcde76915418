/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package hashing

import (
	"crypto/sha256"
	"hash"

	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"

	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/encoder"
)

// ErrHashMismatch is returned when content does not hash to the expected multihash.
var ErrHashMismatch = errors.New("supplied hash doesn't match original content")

// GetHash returns a hash function for the given multihash code.
func GetHash(multihashCode uint) (hash.Hash, error) {
	switch multihashCode {
	case multihash.SHA2_256:
		return sha256.New(), nil
	case multihash.SHA3_256:
		return sha3.New256(), nil
	default:
		return nil, errors.Errorf("algorithm not supported, unable to compute hash for multihash code %d", multihashCode)
	}
}

// GetDigest returns the raw digest of data using the hash identified by the multihash code.
func GetDigest(multihashCode uint, data []byte) ([]byte, error) {
	h, err := GetHash(multihashCode)
	if err != nil {
		return nil, err
	}

	if _, err := h.Write(data); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// ComputeMultihash computes the multihash of data using the given multihash code.
func ComputeMultihash(multihashCode uint, data []byte) ([]byte, error) {
	digest, err := GetDigest(multihashCode, data)
	if err != nil {
		return nil, err
	}

	return multihash.Encode(digest, uint64(multihashCode))
}

// CalculateMultihash returns the base64url encoded multihash of data.
func CalculateMultihash(multihashCode uint, data []byte) (string, error) {
	mh, err := ComputeMultihash(multihashCode, data)
	if err != nil {
		return "", err
	}

	return encoder.EncodeToString(mh), nil
}

// CalculateModelMultihash returns the base64url encoded multihash of the canonical JSON of the model.
func CalculateModelMultihash(model interface{}, multihashCode uint) (string, error) {
	bytes, err := canonicalizer.MarshalCanonical(model)
	if err != nil {
		return "", err
	}

	return CalculateMultihash(multihashCode, bytes)
}

// IsValidModelMultihash checks that the encoded multihash was computed from the canonical JSON of the model.
func IsValidModelMultihash(model interface{}, modelMultihash string) error {
	code, err := GetMultihashCode(modelMultihash)
	if err != nil {
		return err
	}

	computed, err := CalculateModelMultihash(model, uint(code))
	if err != nil {
		return err
	}

	if computed != modelMultihash {
		return ErrHashMismatch
	}

	return nil
}

// DecodeMultihash decodes a base64url encoded multihash.
func DecodeMultihash(encodedMultihash string) (*multihash.DecodedMultihash, error) {
	mhBytes, err := encoder.DecodeString(encodedMultihash)
	if err != nil {
		return nil, errors.Wrap(err, "decode multihash")
	}

	mh, err := multihash.Decode(mhBytes)
	if err != nil {
		return nil, errors.Wrap(err, "decode multihash")
	}

	return mh, nil
}

// GetMultihashCode returns the multihash code of a base64url encoded multihash.
func GetMultihashCode(encodedMultihash string) (uint64, error) {
	mh, err := DecodeMultihash(encodedMultihash)
	if err != nil {
		return 0, err
	}

	return mh.Code, nil
}

// IsComputedUsingMultihashAlgorithms checks that the encoded multihash uses one of the given codes.
func IsComputedUsingMultihashAlgorithms(encodedMultihash string, codes []uint) bool {
	code, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return false
	}

	for _, c := range codes {
		if uint64(c) == code {
			return true
		}
	}

	return false
}
