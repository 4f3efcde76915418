/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package dochandler performs document operation processing and document resolution.
//
// During operation processing it will use the current protocol version to validate the operation request and
// then it will submit the operation to the operation store and notify the batch writer.
//
// Document resolution is based on short or long form DID.
// 1) Short form - the latest document folded from the anchored operations will be returned if found.
//
// 2) Long form - the embedded create request is validated and its unique suffix is resolved against the
// anchored operations. If the document was not anchored yet, the embedded create request is applied on its own
// and the result is returned as unpublished.
package dochandler

import (
	"context"
	"errors"
	"fmt"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/commitment"
	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/opstore"
	"github.com/trustbloc/sidetree-gateway-go/pkg/processor"
)

var logger = log.New("sidetree-gateway-dochandler")

// ErrRejected is returned when the operation store did not accept the operation.
var ErrRejected = errors.New("operation rejected")

// DocumentHandler implements document handler.
type DocumentHandler struct {
	protocol        protocol.Client
	processor       OperationProcessor
	store           OperationStore
	writer          BatchWriter
	namespace       string
	commitmentCheck bool
}

// OperationProcessor is an interface which resolves the document based on the unique suffix.
type OperationProcessor interface {
	Resolve(ctx context.Context, uniqueSuffix string) (*protocol.ResolutionModel, error)
}

// OperationStore queues validated operations.
type OperationStore interface {
	Submit(op *operation.Operation) (opstore.Result, error)
}

// BatchWriter is notified when an operation was queued.
type BatchWriter interface {
	Notify()
}

// Option is a document handler option.
type Option func(opts *DocumentHandler)

// WithCommitmentCheck enables checking the reveal value of update, recover and deactivate requests against the
// anchored state of the document before they are queued. Pending operations are not taken into account.
func WithCommitmentCheck() Option {
	return func(opts *DocumentHandler) {
		opts.commitmentCheck = true
	}
}

// New creates a new document handler with the context.
func New(namespace string, pc protocol.Client, store OperationStore, writer BatchWriter,
	processor OperationProcessor, opts ...Option) *DocumentHandler {
	dh := &DocumentHandler{
		protocol:  pc,
		processor: processor,
		store:     store,
		writer:    writer,
		namespace: namespace,
	}

	for _, opt := range opts {
		opt(dh)
	}

	return dh
}

// Namespace returns the namespace of the document handler.
func (r *DocumentHandler) Namespace() string {
	return r.namespace
}

// Protocol returns the protocol client.
func (r *DocumentHandler) Protocol() protocol.Client {
	return r.protocol
}

// ProcessOperation validates operation and submits it to the operation store. The unpublished resolution
// result is returned for create operations.
func (r *DocumentHandler) ProcessOperation(ctx context.Context, operationBuffer []byte) (*document.ResolutionResult, error) {
	pv, err := r.protocol.Current()
	if err != nil {
		return nil, fmt.Errorf("get current protocol version: %w", err)
	}

	maxSize := pv.Protocol().MaxOperationSize
	if uint(len(operationBuffer)) > maxSize {
		return nil, fmt.Errorf("%w: operation size[%d] exceeds maximum operation size[%d]",
			operation.ErrValidation, len(operationBuffer), maxSize)
	}

	op, err := pv.OperationParser().Parse(r.namespace, operationBuffer)
	if err != nil {
		logger.Debug("Failed to parse operation", log.WithNamespace(r.namespace), log.WithError(err))

		return nil, err
	}

	if r.commitmentCheck && op.Type != operation.TypeCreate {
		if err := r.checkCommitment(ctx, op); err != nil {
			return nil, err
		}
	}

	result, err := r.store.Submit(op)
	if err != nil {
		logger.Error("Failed to submit operation", log.WithSuffix(op.UniqueSuffix), log.WithError(err))

		return nil, fmt.Errorf("submit operation: %w", err)
	}

	if !result.IsAccepted() {
		return nil, fmt.Errorf("%w: %s", ErrRejected, result.Reason)
	}

	r.writer.Notify()

	logger.Debug("Operation queued", log.WithSuffix(op.UniqueSuffix), log.WithOperationType(string(op.Type)),
		log.WithOperationID(op.OperationID))

	if op.Type != operation.TypeCreate {
		return nil, nil //nolint:nilnil
	}

	info := make(protocol.TransformationInfo)
	info[protocol.IDKey] = op.ID
	info[protocol.PublishedKey] = false

	return r.applyCreate(pv, op, info)
}

// ResolveDocument returns document based on passed in short or long form DID.
func (r *DocumentHandler) ResolveDocument(ctx context.Context, shortOrLongFormDID string) (*document.ResolutionResult, error) {
	pv, err := r.protocol.Current()
	if err != nil {
		return nil, fmt.Errorf("get current protocol version: %w", err)
	}

	uniqueSuffix, createRequest, err := pv.OperationParser().ParseDID(r.namespace, shortOrLongFormDID)
	if err != nil {
		return nil, err
	}

	if createRequest == nil {
		return r.resolveRequestWithID(ctx, pv, shortOrLongFormDID, uniqueSuffix)
	}

	return r.resolveRequestWithInitialState(ctx, pv, shortOrLongFormDID, uniqueSuffix, createRequest)
}

func (r *DocumentHandler) resolveRequestWithID(ctx context.Context, pv protocol.Version, shortFormDID,
	uniqueSuffix string) (*document.ResolutionResult, error) {
	rm, err := r.processor.Resolve(ctx, uniqueSuffix)
	if err != nil {
		logger.Debug("Failed to resolve suffix", log.WithSuffix(uniqueSuffix), log.WithError(err))

		return nil, err
	}

	info := make(protocol.TransformationInfo)
	info[protocol.IDKey] = shortFormDID
	info[protocol.PublishedKey] = true

	return pv.DocumentTransformer().TransformDocument(rm, info)
}

func (r *DocumentHandler) resolveRequestWithInitialState(ctx context.Context, pv protocol.Version, longFormDID,
	uniqueSuffix string, createRequest []byte) (*document.ResolutionResult, error) {
	maxSize := pv.Protocol().MaxOperationSize
	if uint(len(createRequest)) > maxSize {
		return nil, fmt.Errorf("%w: initial state size[%d] exceeds maximum operation size[%d]",
			operation.ErrValidation, len(createRequest), maxSize)
	}

	op, err := pv.OperationParser().Parse(r.namespace, createRequest)
	if err != nil {
		return nil, err
	}

	info := make(protocol.TransformationInfo)
	info[protocol.IDKey] = longFormDID

	rm, err := r.processor.Resolve(ctx, uniqueSuffix)
	if err == nil {
		info[protocol.PublishedKey] = true
		info[protocol.CanonicalIDKey] = op.ID

		return pv.DocumentTransformer().TransformDocument(rm, info)
	}

	if !errors.Is(err, processor.ErrDocumentNotFound) {
		logger.Debug("Failed to resolve suffix", log.WithSuffix(uniqueSuffix), log.WithError(err))

		return nil, err
	}

	info[protocol.PublishedKey] = false

	return r.applyCreate(pv, op, info)
}

// applyCreate folds the create operation on its own.
func (r *DocumentHandler) applyCreate(pv protocol.Version, op *operation.Operation,
	info protocol.TransformationInfo) (*document.ResolutionResult, error) {
	rm, err := pv.OperationApplier().Apply(&operation.AnchoredOperation{
		Type:             op.Type,
		UniqueSuffix:     op.UniqueSuffix,
		OperationID:      op.OperationID,
		OperationRequest: op.OperationRequest,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: apply create operation: %s", operation.ErrValidation, err.Error())
	}

	return pv.DocumentTransformer().TransformDocument(rm, info)
}

func (r *DocumentHandler) checkCommitment(ctx context.Context, op *operation.Operation) error {
	rm, err := r.processor.Resolve(ctx, op.UniqueSuffix)
	if err != nil {
		if errors.Is(err, processor.ErrDocumentNotFound) {
			// the create may still be pending
			return nil
		}

		return err
	}

	if rm.Deactivated {
		return fmt.Errorf("%w: document has been deactivated", operation.ErrValidation)
	}

	expected := rm.RecoveryCommitment
	if op.Type == operation.TypeUpdate {
		expected = rm.UpdateCommitment
	}

	if err := commitment.Verify(op.RevealValue, expected); err != nil {
		return fmt.Errorf("%w: %s operation: %s", operation.ErrValidation, op.Type, err.Error())
	}

	return nil
}
