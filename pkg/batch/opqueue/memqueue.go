/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package opqueue

import (
	"sync"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
)

// MemQueue implements an in-memory operation queue. Anchored operation IDs are kept for the
// lifetime of the queue.
type MemQueue struct {
	items    []*operation.QueuedOperation
	anchored map[fingerprint]struct{}
	mutex    sync.RWMutex
}

// Add adds the given operation to the tail of the queue and returns the new length of the queue.
func (q *MemQueue) Add(op *operation.QueuedOperation) (uint, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.items = append(q.items, op)

	return uint(len(q.items)), nil
}

// Peek returns (up to) the given number of operations from the head of the queue but does not remove them.
func (q *MemQueue) Peek(num uint) ([]*operation.QueuedOperation, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	n := int(num)
	if len(q.items) < n {
		n = len(q.items)
	}

	result := make([]*operation.QueuedOperation, n)
	copy(result, q.items[0:n])

	return result, nil
}

// Remove removes (up to) the given number of items from the head of the queue.
// Returns the actual number of items that were removed and the new length of the queue.
func (q *MemQueue) Remove(num uint) (uint, uint, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	n := int(num)
	if len(q.items) < n {
		n = len(q.items)
	}

	q.items = q.items[n:]

	return uint(n), uint(len(q.items)), nil
}

// Delete removes the operation with the given ID.
func (q *MemQueue) Delete(operationID string) (bool, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for i, op := range q.items {
		if op.OperationID == operationID {
			q.items = append(q.items[:i:i], q.items[i+1:]...)

			return true, nil
		}
	}

	return false, nil
}

// All returns all queued operations.
func (q *MemQueue) All() ([]*operation.QueuedOperation, error) {
	return q.Peek(q.Len())
}

// Len returns the length of the queue.
func (q *MemQueue) Len() uint {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	return uint(len(q.items))
}

// MarkAnchored removes the operations with the given IDs and records them as anchored.
func (q *MemQueue) MarkAnchored(operationIDs ...string) (uint, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.anchored == nil {
		q.anchored = make(map[fingerprint]struct{})
	}

	ids := make(map[string]struct{}, len(operationIDs))

	for _, id := range operationIDs {
		ids[id] = struct{}{}
		q.anchored[fingerprintOf(id)] = struct{}{}
	}

	items := q.items[:0:0]

	for _, op := range q.items {
		if _, ok := ids[op.OperationID]; !ok {
			items = append(items, op)
		}
	}

	q.items = items

	return uint(len(q.items)), nil
}

// IsAnchored returns true if the operation was recorded as anchored.
func (q *MemQueue) IsAnchored(operationID string) (bool, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	_, ok := q.anchored[fingerprintOf(operationID)]

	return ok, nil
}
