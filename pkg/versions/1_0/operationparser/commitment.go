/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"fmt"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
)

// GetRevealValue returns the reveal value of an update, recover or deactivate request.
func (p *Parser) GetRevealValue(request []byte) (string, error) {
	op, err := p.ParseOperation("", request, true)
	if err != nil {
		return "", fmt.Errorf("get reveal value - parse operation error: %w", err)
	}

	if op.Type == operation.TypeCreate {
		return "", fmt.Errorf("operation type '%s' not supported for getting operation reveal value", op.Type)
	}

	return op.RevealValue, nil
}

// GetCommitment returns the commitment the request sets for the next operation of its kind. A
// deactivate sets none.
func (p *Parser) GetCommitment(request []byte) (string, error) {
	op, err := p.ParseOperation("", request, true)
	if err != nil {
		return "", fmt.Errorf("get commitment - parse operation error: %w", err)
	}

	switch op.Type { //nolint:exhaustive
	case operation.TypeDeactivate:
		return "", nil
	case operation.TypeUpdate:
		if op.Delta == nil {
			return "", fmt.Errorf("missing delta for %s operation", op.Type)
		}

		return op.Delta.UpdateCommitment, nil
	case operation.TypeRecover:
		signed, err := p.ParseSignedDataForRecover(op.SignedData)
		if err != nil {
			return "", fmt.Errorf("parse signed data for recover: %w", err)
		}

		return signed.RecoveryCommitment, nil
	default:
		return "", fmt.Errorf("operation type '%s' not supported for getting next operation commitment", op.Type)
	}
}
