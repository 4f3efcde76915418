/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/encoder"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

// ParseDID inspects resolution request and returns:
// - unique suffix and create request in case of long form resolution
// - just unique suffix in case of short form resolution (common scenario).
func (p *Parser) ParseDID(namespace, shortOrLongFormDID string) (string, []byte, error) {
	prefix := namespace + NamespaceDelimiter

	if !strings.HasPrefix(shortOrLongFormDID, prefix) {
		return "", nil, fmt.Errorf("%w: did must start with configured namespace[%s]", operation.ErrValidation, namespace)
	}

	parts := strings.Split(strings.TrimPrefix(shortOrLongFormDID, prefix), NamespaceDelimiter)

	switch {
	case len(parts) == 1 && parts[0] != "":
		return parts[0], nil, nil
	case len(parts) == 2 && parts[0] != "":
		// long form format: '<namespace>:<unique-suffix>:Base64url(JSON({suffixData, delta}))'
		createRequest, err := p.parseInitialState(parts[0], parts[1])
		if err != nil {
			return "", nil, fmt.Errorf("%w: long form did: %s", operation.ErrValidation, err.Error())
		}

		return parts[0], createRequest, nil
	default:
		return "", nil, fmt.Errorf("%w: invalid did: %s", operation.ErrValidation, shortOrLongFormDID)
	}
}

// parseInitialState returns the canonical create request embedded in a long-form DID.
func (p *Parser) parseInitialState(uniqueSuffix, initialState string) ([]byte, error) {
	decoded, err := encoder.DecodeString(initialState)
	if err != nil {
		return nil, err
	}

	state := &model.LongFormInitialState{}

	err = json.Unmarshal(decoded, state)
	if err != nil {
		return nil, err
	}

	if state.SuffixData == nil || state.Delta == nil {
		return nil, errors.New("initial state must contain suffix data and delta")
	}

	computed, err := model.GetUniqueSuffix(state.SuffixData, p.MultihashAlgorithms)
	if err != nil {
		return nil, err
	}

	if computed != uniqueSuffix {
		return nil, errors.New("unique suffix doesn't match initial state")
	}

	return canonicalizer.MarshalCanonical(model.CreateRequest{
		Operation:  operation.TypeCreate,
		SuffixData: state.SuffixData,
		Delta:      state.Delta,
	})
}
