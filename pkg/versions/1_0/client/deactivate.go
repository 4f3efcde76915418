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
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

// DeactivateRequestInfo is the information required to create deactivate request.
type DeactivateRequestInfo struct {

	// DidSuffix is the suffix of the document to be deactivated
	DidSuffix string

	// RecoveryKey is the current recovery public key
	RecoveryKey *jws.JWK

	// MultihashCode is the latest hashing algorithm supported by protocol
	MultihashCode uint

	// Signer is used for generating signature (required)
	Signer Signer
}

// NewDeactivateRequest is utility function to create payload for 'deactivate' request.
func NewDeactivateRequest(info *DeactivateRequestInfo) ([]byte, error) {
	if err := validateDeactivateRequest(info); err != nil {
		return nil, err
	}

	revealValue, err := commitment.GetRevealValue(info.RecoveryKey, info.MultihashCode)
	if err != nil {
		return nil, err
	}

	signedDataModel := model.DeactivateSignedDataModel{
		DidSuffix:   info.DidSuffix,
		RecoveryKey: info.RecoveryKey,
	}

	signModel, err := signModel(signedDataModel, info.Signer)
	if err != nil {
		return nil, err
	}

	schema := &model.DeactivateRequest{
		Operation:   operation.TypeDeactivate,
		DidSuffix:   info.DidSuffix,
		RevealValue: revealValue,
		SignedData:  signModel,
	}

	return canonicalizer.MarshalCanonical(schema)
}

func validateDeactivateRequest(info *DeactivateRequestInfo) error {
	if info.DidSuffix == "" {
		return errors.New("missing did unique suffix")
	}

	if err := validateMultihashCode(info.MultihashCode); err != nil {
		return err
	}

	if err := validateSigner(info.Signer); err != nil {
		return err
	}

	return validateKey(info.RecoveryKey, "recovery key")
}
