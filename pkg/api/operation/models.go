/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operation

import "github.com/pkg/errors"

// ErrValidation is returned (wrapped) when an operation request is malformed or fails verification.
var ErrValidation = errors.New("invalid operation")

// Type defines valid values for operation type.
type Type string

const (

	// TypeCreate captures "create" operation type.
	TypeCreate Type = "create"

	// TypeUpdate captures "update" operation type.
	TypeUpdate Type = "update"

	// TypeDeactivate captures "deactivate" operation type.
	TypeDeactivate Type = "deactivate"

	// TypeRecover captures "recover" operation type.
	TypeRecover Type = "recover"
)

// Operation holds the information extracted from a validated client request.
type Operation struct {

	// Type defines operation type.
	Type Type

	// UniqueSuffix defines document unique suffix.
	UniqueSuffix string

	// ID is the short-form DID (namespace + unique suffix).
	ID string

	// OperationID identifies the operation: the multihash of the canonical operation request.
	OperationID string

	// Namespace is the DID method namespace the operation was submitted under.
	Namespace string

	// OperationRequest is the canonical operation request.
	OperationRequest []byte

	// RevealValue is the value revealed by update, recover and deactivate operations.
	RevealValue string
}

// QueuedOperation is an accepted operation waiting to be batched.
type QueuedOperation struct {
	OperationID      string `json:"operationID"`
	Type             Type   `json:"type"`
	UniqueSuffix     string `json:"uniqueSuffix"`
	Namespace        string `json:"namespace"`
	OperationRequest []byte `json:"operation"`
}

// AnchoredOperation is an operation read back from an anchored batch.
type AnchoredOperation struct {

	// Type defines operation type.
	Type Type `json:"type"`

	// UniqueSuffix defines document unique suffix.
	UniqueSuffix string `json:"uniqueSuffix"`

	// OperationID identifies the operation.
	OperationID string `json:"operationID"`

	// OperationRequest is the canonical operation request.
	OperationRequest []byte `json:"operation"`

	// AnchoredAt is the sequence number assigned by the anchoring medium to the batch.
	AnchoredAt uint64 `json:"anchoredAt"`

	// BatchHash is the CAS address of the batch that contained the operation.
	BatchHash string `json:"batchHash"`

	// OperationIndex is the position of the operation in its batch.
	OperationIndex uint `json:"operationIndex"`

	// ProtocolVersion is the starting anchor point of the protocol version used to read the batch.
	ProtocolVersion uint64 `json:"protocolVersion"`
}

// NewQueuedOperation returns the queued form of a validated operation.
func NewQueuedOperation(op *Operation) *QueuedOperation {
	return &QueuedOperation{
		OperationID:      op.OperationID,
		Type:             op.Type,
		UniqueSuffix:     op.UniqueSuffix,
		Namespace:        op.Namespace,
		OperationRequest: op.OperationRequest,
	}
}
