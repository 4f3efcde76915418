/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metadata

import (
	"errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
)

// PublishedOperationsProperty lists the anchored operations that produced the document.
const PublishedOperationsProperty = "publishedOperations"

// Metadata is responsible for creating document metadata.
type Metadata struct {
	includePublishedOperations bool
}

// Option is a metadata instance option.
type Option func(opts *Metadata)

// New creates a new metadata transformer.
func New(opts ...Option) *Metadata {
	md := &Metadata{}

	// apply options
	for _, opt := range opts {
		opt(md)
	}

	return md
}

// WithIncludePublishedOperations sets optional include published operations flag.
func WithIncludePublishedOperations(enabled bool) Option {
	return func(opts *Metadata) {
		opts.includePublishedOperations = enabled
	}
}

// CreateDocumentMetadata will create document metadata.
func (t *Metadata) CreateDocumentMetadata(rm *protocol.ResolutionModel,
	info protocol.TransformationInfo) (document.Metadata, error) {
	if rm == nil || rm.Doc == nil {
		return nil, errors.New("resolution model is required for creating document metadata")
	}

	if info == nil {
		return nil, errors.New("transformation info is required for creating document metadata")
	}

	publishedEntry, ok := info[protocol.PublishedKey]
	if !ok {
		return nil, errors.New("published is required for creating document metadata")
	}

	published, ok := publishedEntry.(bool)
	if !ok {
		return nil, errors.New("published must be a boolean")
	}

	methodMetadata := make(document.Metadata)
	methodMetadata[document.PublishedProperty] = published

	if rm.RecoveryCommitment != "" {
		methodMetadata[document.RecoveryCommitmentProperty] = rm.RecoveryCommitment
	}

	if rm.UpdateCommitment != "" {
		methodMetadata[document.UpdateCommitmentProperty] = rm.UpdateCommitment
	}

	if published {
		methodMetadata[document.AnchoredAtProperty] = rm.LastAnchoredAt
	}

	if rm.Incomplete {
		methodMetadata[document.IncompleteProperty] = true
	}

	if t.includePublishedOperations && len(rm.AppliedOperations) > 0 {
		methodMetadata[PublishedOperationsProperty] = getPublishedOperations(rm.AppliedOperations)
	}

	docMetadata := make(document.Metadata)
	docMetadata[document.MethodProperty] = methodMetadata

	if rm.Deactivated {
		docMetadata[document.DeactivatedProperty] = rm.Deactivated
	}

	if canonicalID, ok := info[protocol.CanonicalIDKey]; ok {
		docMetadata[document.CanonicalIDProperty] = canonicalID
		docMetadata[document.EquivalentIDProperty] = []interface{}{canonicalID}
	}

	if published && rm.LastBatchHash != "" {
		docMetadata[document.VersionIDProperty] = rm.LastBatchHash
	}

	return docMetadata, nil
}

// applied operations are already in anchor order
func getPublishedOperations(ops []*operation.AnchoredOperation) []*PublishedOperation {
	publishedOps := make([]*PublishedOperation, 0, len(ops))

	for _, op := range ops {
		publishedOps = append(publishedOps,
			&PublishedOperation{
				Type:             op.Type,
				OperationRequest: op.OperationRequest,
				AnchoredAt:       op.AnchoredAt,
				BatchHash:        op.BatchHash,
				ProtocolVersion:  op.ProtocolVersion,
			})
	}

	return publishedOps
}

// PublishedOperation defines a published operation for metadata. It is a subset of anchored operation.
type PublishedOperation struct {

	// Type defines operation type.
	Type operation.Type `json:"type"`

	// OperationRequest is the original operation request.
	OperationRequest []byte `json:"operation"`

	// AnchoredAt is the anchor point of the batch.
	AnchoredAt uint64 `json:"anchoredAt"`

	// BatchHash is the CAS address of the batch.
	BatchHash string `json:"batchHash"`

	// ProtocolVersion is the starting anchor point of the protocol that was used for this operation.
	ProtocolVersion uint64 `json:"protocolVersion"`
}
