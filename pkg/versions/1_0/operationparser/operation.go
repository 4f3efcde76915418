/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

var logger = log.New("sidetree-gateway-parser")

// NamespaceDelimiter separates the namespace from the unique suffix.
const NamespaceDelimiter = ":"

// Parser is an operation parser.
type Parser struct {
	protocol.Protocol
}

// New returns a new operation parser.
func New(p protocol.Protocol) *Parser {
	return &Parser{
		Protocol: p,
	}
}

// Parse parses and validates operation. Validation failures wrap operation.ErrValidation.
func (p *Parser) Parse(namespace string, operationRequest []byte) (*operation.Operation, error) {
	// parse and validate operation request using this versions model and validation rules
	internal, err := p.ParseOperation(namespace, operationRequest, false)
	if err != nil {
		return nil, err
	}

	operationID, err := hashing.CalculateMultihash(p.HashAlgorithm(), internal.OperationRequest)
	if err != nil {
		return nil, errors.Wrap(err, "calculate operation ID")
	}

	return &operation.Operation{
		Type:             internal.Type,
		UniqueSuffix:     internal.UniqueSuffix,
		ID:               internal.ID,
		OperationID:      operationID,
		Namespace:        namespace,
		OperationRequest: internal.OperationRequest,
		RevealValue:      internal.RevealValue,
	}, nil
}

// ParseOperation parses and validates operation. Batch mode is used for operations read back from
// anchored batches: the delta is not validated here since an invalid delta is handled when the
// operation is applied.
func (p *Parser) ParseOperation(namespace string, operationRequest []byte, batch bool) (*model.Operation, error) {
	op, err := p.parseOperation(operationRequest, batch)
	if err != nil {
		logger.Debug("Failed to parse operation", log.WithNamespace(namespace), log.WithError(err))

		return nil, fmt.Errorf("%w: %s", operation.ErrValidation, err.Error())
	}

	op.Namespace = namespace
	op.ID = namespace + NamespaceDelimiter + op.UniqueSuffix

	return op, nil
}

func (p *Parser) parseOperation(operationRequest []byte, batch bool) (*model.Operation, error) {
	// check maximum operation size against protocol before parsing
	if len(operationRequest) > int(p.MaxOperationSize) {
		return nil, fmt.Errorf("operation size[%d] exceeds maximum operation size[%d]",
			len(operationRequest), int(p.MaxOperationSize))
	}

	schema := &operationSchema{}

	err := json.Unmarshal(operationRequest, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation request into operation schema: %s", err.Error())
	}

	canonicalRequest, err := canonicalizer.MarshalCanonical(operationRequest)
	if err != nil {
		return nil, err
	}

	var op *model.Operation

	switch schema.Operation {
	case operation.TypeCreate:
		op, err = p.ParseCreateOperation(canonicalRequest, batch)
	case operation.TypeUpdate:
		op, err = p.ParseUpdateOperation(canonicalRequest, batch)
	case operation.TypeDeactivate:
		op, err = p.ParseDeactivateOperation(canonicalRequest, batch)
	case operation.TypeRecover:
		op, err = p.ParseRecoverOperation(canonicalRequest, batch)
	default:
		return nil, fmt.Errorf("operation type [%s] not supported", schema.Operation)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "parse '%s' operation", schema.Operation)
	}

	return op, nil
}

// operationSchema is used to get operation type.
type operationSchema struct {

	// operation
	Operation operation.Type `json:"type"`
}
