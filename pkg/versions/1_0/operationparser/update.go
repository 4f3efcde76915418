/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"
	"fmt"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

// ParseUpdateOperation will parse update operation.
func (p *Parser) ParseUpdateOperation(request []byte, batch bool) (*model.Operation, error) {
	schema, err := p.parseUpdateRequest(request)
	if err != nil {
		return nil, err
	}

	signedData, err := p.ParseSignedDataForUpdate(schema.SignedData)
	if err != nil {
		return nil, err
	}

	if !batch {
		err = p.ValidateDelta(schema.Delta)
		if err != nil {
			return nil, err
		}

		err = hashing.IsValidModelMultihash(schema.Delta, signedData.DeltaHash)
		if err != nil {
			return nil, fmt.Errorf("delta doesn't match signed data delta hash: %s", err.Error())
		}

		err = p.validateCommitment(signedData.UpdateKey, schema.Delta.UpdateCommitment)
		if err != nil {
			return nil, err
		}
	}

	err = p.validateRevealValue(signedData.UpdateKey, schema.RevealValue)
	if err != nil {
		return nil, fmt.Errorf("canonicalized update public key hash doesn't match reveal value: %s", err.Error())
	}

	return &model.Operation{
		Type:             operation.TypeUpdate,
		OperationRequest: request,
		UniqueSuffix:     schema.DidSuffix,
		Delta:            schema.Delta,
		SignedData:       schema.SignedData,
		RevealValue:      schema.RevealValue,
	}, nil
}

func (p *Parser) parseUpdateRequest(payload []byte) (*model.UpdateRequest, error) {
	schema := &model.UpdateRequest{}

	err := json.Unmarshal(payload, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal update request: %s", err.Error())
	}

	if err := requireSignedRequest(schema.DidSuffix, schema.SignedData); err != nil {
		return nil, err
	}

	return schema, nil
}

// ParseSignedDataForUpdate will parse and validate signed data for update.
func (p *Parser) ParseSignedDataForUpdate(compactJWS string) (*model.UpdateSignedDataModel, error) {
	schema := &model.UpdateSignedDataModel{}

	err := p.parseSignedData(compactJWS, schema, func() *jws.JWK { return schema.UpdateKey })
	if err != nil {
		return nil, fmt.Errorf("validate signed data for update: %s", err.Error())
	}

	if err := p.validateMultihash(schema.DeltaHash, "delta hash"); err != nil {
		return nil, fmt.Errorf("validate signed data for update: %s", err.Error())
	}

	return schema, nil
}
