/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

// ParseDeactivateOperation will parse deactivate operation.
func (p *Parser) ParseDeactivateOperation(request []byte, _ bool) (*model.Operation, error) {
	schema, err := p.parseDeactivateRequest(request)
	if err != nil {
		return nil, err
	}

	signedData, err := p.ParseSignedDataForDeactivate(schema.SignedData)
	if err != nil {
		return nil, err
	}

	if signedData.DidSuffix != schema.DidSuffix {
		return nil, errors.New("signed did suffix mismatch for deactivate")
	}

	err = p.validateRevealValue(signedData.RecoveryKey, schema.RevealValue)
	if err != nil {
		return nil, fmt.Errorf("canonicalized recovery public key hash doesn't match reveal value: %s", err.Error())
	}

	return &model.Operation{
		Type:             operation.TypeDeactivate,
		OperationRequest: request,
		UniqueSuffix:     schema.DidSuffix,
		SignedData:       schema.SignedData,
		RevealValue:      schema.RevealValue,
	}, nil
}

func (p *Parser) parseDeactivateRequest(payload []byte) (*model.DeactivateRequest, error) {
	schema := &model.DeactivateRequest{}

	err := json.Unmarshal(payload, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal deactivate request: %s", err.Error())
	}

	if err := requireSignedRequest(schema.DidSuffix, schema.SignedData); err != nil {
		return nil, err
	}

	return schema, nil
}


// ParseSignedDataForDeactivate will parse and validate signed data for deactivate.
func (p *Parser) ParseSignedDataForDeactivate(compactJWS string) (*model.DeactivateSignedDataModel, error) {
	signedData := &model.DeactivateSignedDataModel{}

	err := p.parseSignedData(compactJWS, signedData, func() *jws.JWK { return signedData.RecoveryKey })
	if err != nil {
		return nil, fmt.Errorf("validate signed data for deactivate: %s", err.Error())
	}

	return signedData, nil
}
