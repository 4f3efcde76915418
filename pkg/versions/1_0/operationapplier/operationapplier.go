/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationapplier

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/commitment"
	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

var logger = log.New("sidetree-gateway-applier")

// ErrCommitmentMismatch is returned when the reveal value of an operation doesn't open the
// current commitment of the document.
var ErrCommitmentMismatch = errors.New("reveal value doesn't match commitment")

// Applier is an operation applier.
type Applier struct {
	protocol.Protocol
	OperationParser
	protocol.DocumentComposer
}

// OperationParser defines the functions for parsing operations.
type OperationParser interface {
	ValidateDelta(delta *model.DeltaModel) error
	ParseCreateOperation(request []byte, batch bool) (*model.Operation, error)
	ParseUpdateOperation(request []byte, batch bool) (*model.Operation, error)
	ParseRecoverOperation(request []byte, batch bool) (*model.Operation, error)
	ParseDeactivateOperation(request []byte, batch bool) (*model.Operation, error)
	ParseSignedDataForUpdate(compactJWS string) (*model.UpdateSignedDataModel, error)
	ParseSignedDataForRecover(compactJWS string) (*model.RecoverSignedDataModel, error)
}

// New returns a new operation applier for the given protocol.
func New(p protocol.Protocol, parser OperationParser, dc protocol.DocumentComposer) *Applier {
	return &Applier{
		Protocol:         p,
		OperationParser:  parser,
		DocumentComposer: dc,
	}
}

// Apply applies the given anchored operation to the resolution model and returns the new model.
// The given model is not modified. An error means the operation has to be skipped.
func (s *Applier) Apply(op *operation.AnchoredOperation, rm *protocol.ResolutionModel) (*protocol.ResolutionModel, error) {
	if rm == nil {
		rm = &protocol.ResolutionModel{}
	}

	if rm.Deactivated {
		return nil, errors.Errorf("%s operation cannot be applied to a deactivated document", op.Type)
	}

	switch op.Type {
	case operation.TypeCreate:
		return s.applyCreateOperation(op, rm)
	case operation.TypeUpdate:
		return s.applyUpdateOperation(op, rm)
	case operation.TypeDeactivate:
		return s.applyDeactivateOperation(op, rm)
	case operation.TypeRecover:
		return s.applyRecoverOperation(op, rm)
	default:
		return nil, fmt.Errorf("operation type [%s] not supported for process operation", op.Type)
	}
}

func (s *Applier) applyCreateOperation(anchoredOp *operation.AnchoredOperation,
	rm *protocol.ResolutionModel) (*protocol.ResolutionModel, error) {
	logger.Debug("Applying create operation", withOperation(anchoredOp)...)

	if rm.Doc != nil {
		return nil, errors.New("create has to be the first operation")
	}

	op, err := s.OperationParser.ParseCreateOperation(anchoredOp.OperationRequest, true)
	if err != nil {
		return nil, fmt.Errorf("failed to parse create operation in batch mode: %s", err.Error())
	}

	if op.UniqueSuffix != anchoredOp.UniqueSuffix {
		return nil, fmt.Errorf("create operation suffix[%s] doesn't match anchored suffix[%s]",
			op.UniqueSuffix, anchoredOp.UniqueSuffix)
	}

	// from this point any error should advance recovery commitment
	result := &protocol.ResolutionModel{
		Doc:                make(document.Document),
		CreatedAt:          anchoredOp.AnchoredAt,
		RecoveryCommitment: op.SuffixData.RecoveryCommitment,
	}

	s.advance(result, rm, anchoredOp)

	// verify actual delta hash matches expected delta hash
	err = hashing.IsValidModelMultihash(op.Delta, op.SuffixData.DeltaHash)
	if err != nil {
		logger.Info("Delta doesn't match delta hash; set update commitment to nil and advance recovery commitment",
			append(withOperation(anchoredOp), log.WithError(err))...)

		return result, nil
	}

	err = s.OperationParser.ValidateDelta(op.Delta)
	if err != nil {
		logger.Info("Parse delta failed; set update commitment to nil and advance recovery commitment",
			append(withOperation(anchoredOp), log.WithError(err))...)

		return result, nil
	}

	result.UpdateCommitment = op.Delta.UpdateCommitment

	doc, err := s.ApplyPatches(make(document.Document), op.Delta.Patches)
	if err != nil {
		logger.Info("Apply patches failed; advance commitments",
			append(withOperation(anchoredOp), log.WithError(err))...)

		return result, nil
	}

	result.Doc = doc

	return result, nil
}

func (s *Applier) applyUpdateOperation(anchoredOp *operation.AnchoredOperation,
	rm *protocol.ResolutionModel) (*protocol.ResolutionModel, error) {
	logger.Debug("Applying update operation", withOperation(anchoredOp)...)

	if rm.Doc == nil {
		return nil, errors.New("update cannot be first operation")
	}

	op, err := s.OperationParser.ParseUpdateOperation(anchoredOp.OperationRequest, true)
	if err != nil {
		return nil, fmt.Errorf("failed to parse update operation in batch mode: %s", err.Error())
	}

	if err := verifyCommitment(op.RevealValue, rm.UpdateCommitment); err != nil {
		return nil, errors.Wrap(err, "update")
	}

	signedDataModel, err := s.ParseSignedDataForUpdate(op.SignedData)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed data model while applying update: %s", err.Error())
	}

	// verify the delta against the signed delta hash
	err = hashing.IsValidModelMultihash(op.Delta, signedDataModel.DeltaHash)
	if err != nil {
		return nil, fmt.Errorf("update delta doesn't match delta hash: %s", err.Error())
	}

	err = s.OperationParser.ValidateDelta(op.Delta)
	if err != nil {
		return nil, fmt.Errorf("failed to validate delta: %s", err.Error())
	}

	// delta is valid so advance update commitment
	result := &protocol.ResolutionModel{
		Doc:                rm.Doc,
		CreatedAt:          rm.CreatedAt,
		UpdateCommitment:   op.Delta.UpdateCommitment,
		RecoveryCommitment: rm.RecoveryCommitment,
	}

	s.advance(result, rm, anchoredOp)

	doc, err := s.ApplyPatches(rm.Doc, op.Delta.Patches)
	if err != nil {
		logger.Info("Apply patches failed; advance update commitment",
			append(withOperation(anchoredOp), log.WithError(err))...)

		return result, nil
	}

	// applying patches succeeded so update document
	result.Doc = doc

	return result, nil
}

func (s *Applier) applyDeactivateOperation(anchoredOp *operation.AnchoredOperation,
	rm *protocol.ResolutionModel) (*protocol.ResolutionModel, error) {
	logger.Debug("Applying deactivate operation", withOperation(anchoredOp)...)

	if rm.Doc == nil {
		return nil, errors.New("deactivate can only be applied to an existing document")
	}

	// signature, signed suffix and reveal value against the recovery key are verified by the parser
	op, err := s.OperationParser.ParseDeactivateOperation(anchoredOp.OperationRequest, true)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deactivate operation in batch mode: %s", err.Error())
	}

	if err := verifyCommitment(op.RevealValue, rm.RecoveryCommitment); err != nil {
		return nil, errors.Wrap(err, "deactivate")
	}

	result := &protocol.ResolutionModel{
		Doc:         make(document.Document),
		CreatedAt:   rm.CreatedAt,
		Deactivated: true,
	}

	s.advance(result, rm, anchoredOp)

	return result, nil
}

func (s *Applier) applyRecoverOperation(anchoredOp *operation.AnchoredOperation,
	rm *protocol.ResolutionModel) (*protocol.ResolutionModel, error) {
	logger.Debug("Applying recover operation", withOperation(anchoredOp)...)

	if rm.Doc == nil {
		return nil, errors.New("recover can only be applied to an existing document")
	}

	op, err := s.OperationParser.ParseRecoverOperation(anchoredOp.OperationRequest, true)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recover operation in batch mode: %s", err.Error())
	}

	if err := verifyCommitment(op.RevealValue, rm.RecoveryCommitment); err != nil {
		return nil, errors.Wrap(err, "recover")
	}

	signedDataModel, err := s.ParseSignedDataForRecover(op.SignedData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signed data model while applying recover: %s", err.Error())
	}

	// from this point any error should advance recovery commitment
	result := &protocol.ResolutionModel{
		Doc:                make(document.Document),
		CreatedAt:          rm.CreatedAt,
		RecoveryCommitment: signedDataModel.RecoveryCommitment,
	}

	s.advance(result, rm, anchoredOp)

	// verify the delta against the signed delta hash
	err = hashing.IsValidModelMultihash(op.Delta, signedDataModel.DeltaHash)
	if err != nil {
		logger.Info("Recover delta doesn't match delta hash; set update commitment to nil and advance recovery commitment",
			append(withOperation(anchoredOp), log.WithError(err))...)

		return result, nil
	}

	err = s.OperationParser.ValidateDelta(op.Delta)
	if err != nil {
		logger.Info("Parse delta failed; set update commitment to nil and advance recovery commitment",
			append(withOperation(anchoredOp), log.WithError(err))...)

		return result, nil
	}

	result.UpdateCommitment = op.Delta.UpdateCommitment

	doc, err := s.ApplyPatches(make(document.Document), op.Delta.Patches)
	if err != nil {
		logger.Info("Apply patches failed; advance commitments",
			append(withOperation(anchoredOp), log.WithError(err))...)

		return result, nil
	}

	result.Doc = doc

	return result, nil
}

// advance records the anchored operation as the last applied operation of the result.
func (s *Applier) advance(result, rm *protocol.ResolutionModel, op *operation.AnchoredOperation) {
	result.LastAnchoredAt = op.AnchoredAt
	result.LastBatchHash = op.BatchHash
	result.AppliedOperations = append(append([]*operation.AnchoredOperation(nil), rm.AppliedOperations...), op)
}

func verifyCommitment(revealValue, expected string) error {
	if expected == "" {
		return errors.New("document has no commitment for this operation")
	}

	c, err := commitment.GetCommitmentFromRevealValue(revealValue)
	if err != nil {
		return err
	}

	if c != expected {
		return ErrCommitmentMismatch
	}

	return nil
}

func withOperation(op *operation.AnchoredOperation) []zap.Field {
	return []zap.Field{
		log.WithSuffix(op.UniqueSuffix), log.WithOperationType(string(op.Type)),
		log.WithAnchoredAt(op.AnchoredAt), log.WithBatchHash(op.BatchHash),
	}
}
