/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package opqueue

import (
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
)

// Queue holds pending operations in acceptance order.
type Queue interface {
	// Add adds the given operation to the tail of the queue and returns the new length of the queue.
	Add(op *operation.QueuedOperation) (uint, error)

	// Peek returns (up to) the given number of operations from the head of the queue but does not remove them.
	Peek(num uint) ([]*operation.QueuedOperation, error)

	// Remove removes (up to) the given number of operations from the head of the queue.
	// Returns the number of operations removed and the new length of the queue.
	Remove(num uint) (uint, uint, error)

	// Delete removes the operation with the given ID wherever it is in the queue.
	Delete(operationID string) (bool, error)

	// All returns all queued operations in order.
	All() ([]*operation.QueuedOperation, error)

	// Len returns the length of the queue.
	Len() uint

	// MarkAnchored removes the operations with the given IDs, wherever they are in the queue, and
	// records them as anchored in the same write. Returns the new length of the queue.
	MarkAnchored(operationIDs ...string) (uint, error)

	// IsAnchored returns true if the operation was recorded as anchored.
	IsAnchored(operationID string) (bool, error)
}
