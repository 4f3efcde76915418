/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cas

import (
	"bytes"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
)

const cidV0Prefix = "Qm"

// ComputeAddress returns the CIDv0 address (base58btc sha2-256 multihash) of the content.
func ComputeAddress(content []byte) (string, error) {
	mh, err := hashing.ComputeMultihash(multihash.SHA2_256, content)
	if err != nil {
		return "", err
	}

	return base58.Encode(mh), nil
}

// ParseAddress decodes an address into its multihash. Both CIDv0 strings and
// multibase-prefixed multihashes are accepted.
func ParseAddress(address string) (multihash.Multihash, error) {
	if address == "" {
		return nil, errors.Wrap(cas.ErrInvalidAddress, "empty address")
	}

	var raw []byte

	if strings.HasPrefix(address, cidV0Prefix) {
		raw = base58.Decode(address)
	} else {
		_, decoded, err := multibase.Decode(address)
		if err != nil {
			return nil, errors.Wrapf(cas.ErrInvalidAddress, "%s: %s", address, err)
		}

		raw = decoded
	}

	mh, err := multihash.Cast(raw)
	if err != nil {
		return nil, errors.Wrapf(cas.ErrInvalidAddress, "%s: %s", address, err)
	}

	return mh, nil
}

// VerifyContent checks that the content hashes to the given address.
func VerifyContent(address string, content []byte) error {
	mh, err := ParseAddress(address)
	if err != nil {
		return err
	}

	decoded, err := multihash.Decode(mh)
	if err != nil {
		return errors.Wrapf(cas.ErrInvalidAddress, "%s: %s", address, err)
	}

	computed, err := hashing.ComputeMultihash(uint(decoded.Code), content)
	if err != nil {
		return err
	}

	if !bytes.Equal(computed, mh) {
		return errors.Wrapf(cas.ErrContentMismatch, "address %s", address)
	}

	return nil
}
