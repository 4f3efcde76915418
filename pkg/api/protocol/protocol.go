/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protocol

import (
	"context"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/txn"
	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
	"github.com/trustbloc/sidetree-gateway-go/pkg/patch"
)

// Protocol defines protocol parameters.
type Protocol struct {
	// StartingAnchorPoint is the inclusive anchor point from which this protocol applies.
	StartingAnchorPoint uint64 `json:"startingAnchorPoint" yaml:"startingAnchorPoint"`

	// MultihashAlgorithms are the allowed multihash codes; the first one is used for hashing.
	MultihashAlgorithms []uint `json:"multihashAlgorithms" yaml:"multihashAlgorithms"`

	// MaxOperationCount defines maximum number of operations per batch.
	MaxOperationCount uint `json:"maxOperationCount" yaml:"maxOperationCount"`

	// MaxOperationSize is maximum size of an operation request in bytes.
	MaxOperationSize uint `json:"maxOperationSize" yaml:"maxOperationSize"`

	// MaxOperationHashLength is maximum length of any hash in an operation request.
	MaxOperationHashLength uint `json:"maxOperationHashLength" yaml:"maxOperationHashLength"`

	// MaxDeltaSize is maximum size of the canonical delta in bytes.
	MaxDeltaSize uint `json:"maxDeltaSize" yaml:"maxDeltaSize"`

	// MaxBatchFileSize is maximum allowed size (in bytes) of a compressed batch file stored in CAS.
	MaxBatchFileSize uint `json:"maxBatchFileSize" yaml:"maxBatchFileSize"`

	// CompressionAlgorithm is the batch file compression algorithm.
	CompressionAlgorithm string `json:"compressionAlgorithm" yaml:"compressionAlgorithm"`

	// Patches contains the supported patch actions.
	Patches []string `json:"patches" yaml:"patches"`

	// SignatureAlgorithms contains the supported JWS algorithms.
	SignatureAlgorithms []string `json:"signatureAlgorithms" yaml:"signatureAlgorithms"`

	// KeyAlgorithms contains the supported key curves.
	KeyAlgorithms []string `json:"keyAlgorithms" yaml:"keyAlgorithms"`
}

// HashAlgorithm returns the multihash code used to compute hashes.
func (p Protocol) HashAlgorithm() uint {
	if len(p.MultihashAlgorithms) == 0 {
		return 0
	}

	return p.MultihashAlgorithms[0]
}

// ResolutionModel is the state of a document folded from its operations.
type ResolutionModel struct {
	Doc                document.Document
	CreatedAt          uint64
	LastAnchoredAt     uint64
	LastBatchHash      string
	UpdateCommitment   string
	RecoveryCommitment string
	Deactivated        bool
	AppliedOperations  []*operation.AnchoredOperation

	// Incomplete is set when the content of at least one anchored batch could not be found.
	Incomplete bool
}

// Clone returns a deep copy of the model.
func (rm *ResolutionModel) Clone() (*ResolutionModel, error) {
	doc, err := rm.Doc.Clone()
	if err != nil {
		return nil, err
	}

	clone := *rm
	clone.Doc = doc
	clone.AppliedOperations = append([]*operation.AnchoredOperation(nil), rm.AppliedOperations...)

	return &clone, nil
}

// TransformationInfo contains document transformation info.
type TransformationInfo map[string]interface{}

// Transformation info keys.
const (
	// IDKey is the DID the document is resolved for.
	IDKey = "id"

	// PublishedKey tells whether the document was resolved from anchored operations.
	PublishedKey = "published"

	// CanonicalIDKey is the short-form DID when a long-form DID was resolved.
	CanonicalIDKey = "canonicalId"
)

// OperationParser parses and validates operation requests.
type OperationParser interface {
	// Parse validates the request and returns the parsed operation with its identity.
	Parse(namespace string, operationRequest []byte) (*operation.Operation, error)

	// ParseDID splits a short or long form DID into its unique suffix and, for long form, the
	// embedded create request.
	ParseDID(namespace, shortOrLongFormDID string) (string, []byte, error)

	// GetRevealValue returns the reveal value of an update, recover or deactivate request.
	GetRevealValue(operationRequest []byte) (string, error)

	// GetCommitment returns the next update or recovery commitment carried by the request.
	GetCommitment(operationRequest []byte) (string, error)
}

// OperationApplier applies an anchored operation to a resolution model.
type OperationApplier interface {
	Apply(op *operation.AnchoredOperation, rm *ResolutionModel) (*ResolutionModel, error)
}

// DocumentComposer applies patches to the document.
type DocumentComposer interface {
	ApplyPatches(doc document.Document, patches []patch.Patch) (document.Document, error)
}

// OperationHandler writes a batch of operations to CAS and returns the batch hash.
type OperationHandler interface {
	PrepareBatch(ctx context.Context, ops []*operation.QueuedOperation) (string, error)
}

// OperationProvider reads the operations of an anchored batch.
type OperationProvider interface {
	GetOperations(ctx context.Context, anchor *txn.AnchorReference) ([]*operation.AnchoredOperation, error)
}

// DocumentTransformer transforms the internal resolution model into the external document.
type DocumentTransformer interface {
	TransformDocument(rm *ResolutionModel, info TransformationInfo) (*document.ResolutionResult, error)
}

// Version contains the protocol and the components that implement it.
type Version interface {
	Version() string
	Protocol() Protocol
	OperationParser() OperationParser
	OperationApplier() OperationApplier
	OperationHandler() OperationHandler
	OperationProvider() OperationProvider
	DocumentComposer() DocumentComposer
	DocumentTransformer() DocumentTransformer
}

// Client provides the protocol version active at an anchor point.
type Client interface {
	// Current returns the latest version of the protocol.
	Current() (Version, error)

	// Get returns the version active at the given anchor point.
	Get(anchoredAt uint64) (Version, error)
}
