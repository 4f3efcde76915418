/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cutter

import (
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-cutter")

// OperationQueue is the pending operation queue the cutter reads from.
type OperationQueue interface {
	// Peek returns up to num pending operations in acceptance order.
	Peek(num uint) ([]*operation.QueuedOperation, error)

	// Len returns the number of pending operations.
	Len() uint
}

// Result is the result of a batch cut.
type Result struct {
	// Operations are the operations in the batch, in acceptance order.
	Operations []*operation.QueuedOperation

	// Pending is the number of operations left in the queue once the batch is acked.
	Pending uint

	// ProtocolVersion is the starting anchor point of the protocol used for the batch.
	ProtocolVersion uint64
}

// BatchCutter cuts batches of pending operations. It never removes operations from the queue:
// the caller acks them once the batch is anchored.
type BatchCutter struct {
	client   protocol.Client
	queue    OperationQueue
	maxBatch uint
}

// Option is a cutter option.
type Option func(c *BatchCutter)

// WithMaxOperationsPerBatch caps the batch size below the protocol's maximum operation count.
func WithMaxOperationsPerBatch(max uint) Option {
	return func(c *BatchCutter) {
		c.maxBatch = max
	}
}

// New creates a batch cutter.
func New(client protocol.Client, queue OperationQueue, opts ...Option) *BatchCutter {
	c := &BatchCutter{
		client: client,
		queue:  queue,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Cut returns the next batch. If force is false then the batch is cut only if the queue holds at
// least a full batch; if force is true then it is cut if there is at least one pending operation.
// A second operation for a suffix already in the batch is left pending for a later batch.
func (c *BatchCutter) Cut(force bool) (Result, error) {
	pending := c.queue.Len()
	if pending == 0 {
		return Result{}, nil
	}

	pv, err := c.client.Current()
	if err != nil {
		return Result{}, errors.Wrap(err, "get current protocol version")
	}

	maxOperations := c.MaxOperationsPerBatch(pv.Protocol())

	if !force && pending < maxOperations {
		return Result{Pending: pending}, nil
	}

	ops, err := c.queue.Peek(maxOperations)
	if err != nil {
		return Result{}, errors.Wrap(err, "peek pending operations")
	}

	batch := uniqueSuffixes(ops)

	logger.Debug("Cut batch", log.WithTotalPending(pending), log.WithTotal(len(batch)),
		log.WithMaxSize(int(maxOperations)))

	return Result{
		Operations:      batch,
		Pending:         pending - uint(len(batch)),
		ProtocolVersion: pv.Protocol().StartingAnchorPoint,
	}, nil
}

// MaxOperationsPerBatch returns the size of a full batch for the given protocol.
func (c *BatchCutter) MaxOperationsPerBatch(p protocol.Protocol) uint {
	if c.maxBatch > 0 && c.maxBatch < p.MaxOperationCount {
		return c.maxBatch
	}

	return p.MaxOperationCount
}

func uniqueSuffixes(ops []*operation.QueuedOperation) []*operation.QueuedOperation {
	suffixes := make(map[string]struct{}, len(ops))

	batch := make([]*operation.QueuedOperation, 0, len(ops))

	for _, op := range ops {
		if _, ok := suffixes[op.UniqueSuffix]; ok {
			logger.Debug("Deferring operation to the next batch", log.WithSuffix(op.UniqueSuffix),
				log.WithOperationID(op.OperationID))

			continue
		}

		suffixes[op.UniqueSuffix] = struct{}{}

		batch = append(batch, op)
	}

	return batch
}
