/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/commitment"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/patch"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

// UpdateRequestInfo is the information required to create update request.
type UpdateRequestInfo struct {

	// DidSuffix is the suffix of the document to be updated
	DidSuffix string

	// Patches is an array of standard patch actions
	Patches []patch.Patch

	// UpdateCommitment is the commitment for the next update
	UpdateCommitment string

	// UpdateKey is the current update key
	UpdateKey *jws.JWK

	// MultihashCode is the latest hashing algorithm supported by protocol
	MultihashCode uint

	// Signer that will be used for signing request specific subset of data
	Signer Signer
}

// NewUpdateRequest is utility function to create payload for 'update' request.
func NewUpdateRequest(info *UpdateRequestInfo) ([]byte, error) {
	if err := validateUpdateRequest(info); err != nil {
		return nil, err
	}

	delta := &model.DeltaModel{
		UpdateCommitment: info.UpdateCommitment,
		Patches:          info.Patches,
	}

	deltaHash, err := hashing.CalculateModelMultihash(delta, info.MultihashCode)
	if err != nil {
		return nil, err
	}

	signedData := &model.UpdateSignedDataModel{
		DeltaHash: deltaHash,
		UpdateKey: info.UpdateKey,
	}

	err = validateNextCommitment(info.UpdateKey, info.MultihashCode, info.UpdateCommitment)
	if err != nil {
		return nil, err
	}

	revealValue, err := commitment.GetRevealValue(info.UpdateKey, info.MultihashCode)
	if err != nil {
		return nil, err
	}

	compactJWS, err := signModel(signedData, info.Signer)
	if err != nil {
		return nil, err
	}

	schema := &model.UpdateRequest{
		Operation:   operation.TypeUpdate,
		DidSuffix:   info.DidSuffix,
		RevealValue: revealValue,
		Delta:       delta,
		SignedData:  compactJWS,
	}

	return canonicalizer.MarshalCanonical(schema)
}

func validateUpdateRequest(info *UpdateRequestInfo) error {
	if info.DidSuffix == "" {
		return errors.New("missing did unique suffix")
	}

	if len(info.Patches) == 0 {
		return errors.New("missing update information")
	}

	if err := validateMultihashCode(info.MultihashCode); err != nil {
		return err
	}

	if err := validateSigner(info.Signer); err != nil {
		return err
	}

	return validateKey(info.UpdateKey, "update key")
}
