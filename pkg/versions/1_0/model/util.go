/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model

import (
	"errors"
	"fmt"

	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
)

// GetUniqueSuffix computes the DID unique suffix: the encoded multihash of the canonical suffix data,
// using the first of the protocol's multihash algorithms.
func GetUniqueSuffix(suffixData *SuffixDataModel, algs []uint) (string, error) {
	if suffixData == nil {
		return "", errors.New("unique suffix: missing suffix data")
	}

	if len(algs) == 0 {
		return "", errors.New("unique suffix: no multihash algorithm")
	}

	suffix, err := hashing.CalculateModelMultihash(suffixData, algs[0])
	if err != nil {
		return "", fmt.Errorf("unique suffix: %w", err)
	}

	return suffix, nil
}
