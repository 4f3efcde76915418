/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/multiformats/go-multihash"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/encoder"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	"github.com/trustbloc/sidetree-gateway-go/pkg/patch"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

// CreateRequestInfo contains data for creating create payload.
type CreateRequestInfo struct {

	// opaque document content
	// required
	OpaqueDocument string

	// patches that will be used to create document
	// required if opaque document is not specified
	Patches []patch.Patch

	// the recovery commitment
	// required
	RecoveryCommitment string

	// the update commitment
	// required
	UpdateCommitment string

	// latest hashing algorithm supported by protocol
	MultihashCode uint
}

// NewCreateRequest is utility function to create payload for 'create' request.
func NewCreateRequest(info *CreateRequestInfo) ([]byte, error) {
	schema, err := newCreateRequest(info)
	if err != nil {
		return nil, err
	}

	return canonicalizer.MarshalCanonical(schema)
}

// GetUniqueSuffix returns the unique suffix of the DID created by the given create request.
func GetUniqueSuffix(createRequest []byte, multihashCode uint) (string, error) {
	schema := &model.CreateRequest{}
	if err := json.Unmarshal(createRequest, schema); err != nil {
		return "", err
	}

	return model.GetUniqueSuffix(schema.SuffixData, []uint{multihashCode})
}

// NewLongFormDID returns the long-form DID for the given namespace and create request info:
// '<namespace>:<unique-suffix>:Base64url(JCS({suffixData, delta}))'.
func NewLongFormDID(namespace string, info *CreateRequestInfo) (string, error) {
	schema, err := newCreateRequest(info)
	if err != nil {
		return "", err
	}

	uniqueSuffix, err := model.GetUniqueSuffix(schema.SuffixData, []uint{info.MultihashCode})
	if err != nil {
		return "", err
	}

	initialState, err := canonicalizer.MarshalCanonical(model.LongFormInitialState{
		SuffixData: schema.SuffixData,
		Delta:      schema.Delta,
	})
	if err != nil {
		return "", err
	}

	return namespace + ":" + uniqueSuffix + ":" + encoder.EncodeToString(initialState), nil
}

func newCreateRequest(info *CreateRequestInfo) (*model.CreateRequest, error) {
	if err := validateCreateRequest(info); err != nil {
		return nil, err
	}

	patches, err := getPatches(info.OpaqueDocument, info.Patches)
	if err != nil {
		return nil, err
	}

	delta := &model.DeltaModel{
		UpdateCommitment: info.UpdateCommitment,
		Patches:          patches,
	}

	deltaHash, err := hashing.CalculateModelMultihash(delta, info.MultihashCode)
	if err != nil {
		return nil, err
	}

	suffixData := &model.SuffixDataModel{
		DeltaHash:          deltaHash,
		RecoveryCommitment: info.RecoveryCommitment,
	}

	return &model.CreateRequest{
		Operation:  operation.TypeCreate,
		Delta:      delta,
		SuffixData: suffixData,
	}, nil
}

func getPatches(opaque string, patches []patch.Patch) ([]patch.Patch, error) {
	if opaque != "" {
		return patch.PatchesFromDocument(opaque)
	}

	return patches, nil
}

func validateCreateRequest(info *CreateRequestInfo) error {
	if info.OpaqueDocument == "" && len(info.Patches) == 0 {
		return errors.New("either opaque document or patches have to be supplied")
	}

	if info.OpaqueDocument != "" && len(info.Patches) > 0 {
		return errors.New("cannot provide both opaque document and patches")
	}

	if err := validateMultihashCode(info.MultihashCode); err != nil {
		return err
	}

	if !hashing.IsComputedUsingMultihashAlgorithms(info.RecoveryCommitment, []uint{info.MultihashCode}) {
		return errors.New("next recovery commitment is not computed with the specified hash algorithm")
	}

	if !hashing.IsComputedUsingMultihashAlgorithms(info.UpdateCommitment, []uint{info.MultihashCode}) {
		return errors.New("next update commitment is not computed with the specified hash algorithm")
	}

	if info.RecoveryCommitment == info.UpdateCommitment {
		return errors.New("recovery and update commitments cannot be equal, re-using public keys is not allowed")
	}

	return nil
}

func validateMultihashCode(code uint) error {
	if _, err := hashing.GetHash(code); err != nil || !multihash.ValidCode(uint64(code)) {
		return fmt.Errorf("multihash[%d] not supported", code)
	}

	return nil
}
