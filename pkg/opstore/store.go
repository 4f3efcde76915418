/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package opstore

import (
	"fmt"
	"sync"

	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/batch/opqueue"
	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-opstore")

// Status is the outcome of a submission.
type Status string

const (
	// Accepted means the operation was queued.
	Accepted Status = "accepted"

	// Rejected means the operation was not queued. The reason explains why.
	Rejected Status = "rejected"
)

// Rejection reasons.
const (
	ReasonDuplicate       = "duplicate operation"
	ReasonPending         = "an operation is already pending for this DID"
	ReasonUpdatePending   = "an update operation is already pending for this DID"
	ReasonRecoveryPending = "a recover or deactivate operation is already pending for this DID"
	ReasonUnknownType     = "unknown operation type"
)

// Result is the result of a submission.
type Result struct {
	Status Status
	Reason string
}

// IsAccepted returns true if the operation was queued.
func (r Result) IsAccepted() bool {
	return r.Status == Accepted
}

type slot int

const (
	slotCreate slot = iota
	slotUpdate
	slotRecovery
)

type slotKey struct {
	suffix string
	slot   slot
}

type metricsProvider interface {
	OperationSubmitted(status, reason string)
	PendingOperations(count uint)
}

type noopMetrics struct{}

func (noopMetrics) OperationSubmitted(string, string) {}
func (noopMetrics) PendingOperations(uint)            {}

// Store holds pending operations and enforces that at most one operation per DID and slot
// is pending. The slots are create, update and recovery (recover and deactivate).
type Store struct {
	mutex         sync.Mutex
	queue         opqueue.Queue
	multihashCode uint
	pending       map[string]*operation.QueuedOperation
	slots         map[slotKey]string
	suffixPending map[string]int
	metrics       metricsProvider
}

// Option is a store option.
type Option func(s *Store)

// WithMultihashCode sets the hash algorithm used to identify operations that arrive without an ID.
func WithMultihashCode(code uint) Option {
	return func(s *Store) {
		s.multihashCode = code
	}
}

// WithMetrics sets the metrics provider.
func WithMetrics(metrics metricsProvider) Option {
	return func(s *Store) {
		s.metrics = metrics
	}
}

// New returns a store over the given queue. Indexes are rebuilt from operations already in the queue.
// Anchored operation IDs are read from the queue, so a durable queue keeps duplicates out across restarts.
func New(queue opqueue.Queue, opts ...Option) (*Store, error) {
	s := &Store{
		queue:         queue,
		multihashCode: multihash.SHA2_256,
		pending:       make(map[string]*operation.QueuedOperation),
		slots:         make(map[slotKey]string),
		suffixPending: make(map[string]int),
		metrics:       noopMetrics{},
	}

	for _, opt := range opts {
		opt(s)
	}

	ops, err := queue.All()
	if err != nil {
		return nil, errors.Wrap(err, "restore pending operations")
	}

	for _, op := range ops {
		sl, err := slotOf(op.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "restore operation %s", op.OperationID)
		}

		s.index(op, sl)
	}

	if len(ops) > 0 {
		logger.Info("Restored pending operations", log.WithTotalPending(uint(len(ops))))
	}

	s.metrics.PendingOperations(queue.Len())

	return s, nil
}

// Submit queues a validated operation unless it is a duplicate or collides with a pending
// operation for the same DID and slot. A pending update is superseded by a recover or deactivate.
func (s *Store) Submit(op *operation.Operation) (Result, error) {
	if op.OperationID == "" {
		id, err := s.operationID(op.OperationRequest)
		if err != nil {
			return Result{}, err
		}

		op.OperationID = id
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	result, err := s.submit(op)
	if err != nil {
		return Result{}, err
	}

	s.metrics.OperationSubmitted(string(result.Status), result.Reason)

	if result.IsAccepted() {
		logger.Debug("Operation accepted", log.WithOperationID(op.OperationID), log.WithSuffix(op.UniqueSuffix),
			log.WithOperationType(string(op.Type)))
	} else {
		logger.Info("Operation rejected", log.WithOperationID(op.OperationID), log.WithSuffix(op.UniqueSuffix),
			log.WithOperationType(string(op.Type)), log.WithReason(result.Reason))
	}

	return result, nil
}

func (s *Store) submit(op *operation.Operation) (Result, error) {
	if _, ok := s.pending[op.OperationID]; ok {
		return rejected(ReasonDuplicate), nil
	}

	anchored, err := s.queue.IsAnchored(op.OperationID)
	if err != nil {
		return Result{}, errors.Wrap(err, "check anchored operations")
	}

	if anchored {
		return rejected(ReasonDuplicate), nil
	}

	sl, err := slotOf(op.Type)
	if err != nil {
		return rejected(ReasonUnknownType), nil //nolint:nilerr
	}

	switch sl {
	case slotCreate:
		if s.suffixPending[op.UniqueSuffix] > 0 {
			return rejected(ReasonPending), nil
		}
	case slotUpdate:
		if s.occupied(op.UniqueSuffix, slotRecovery) {
			return rejected(ReasonRecoveryPending), nil
		}

		if s.occupied(op.UniqueSuffix, slotUpdate) {
			return rejected(ReasonUpdatePending), nil
		}
	case slotRecovery:
		if s.occupied(op.UniqueSuffix, slotRecovery) {
			return rejected(ReasonRecoveryPending), nil
		}

		if err := s.supersedeUpdate(op.UniqueSuffix); err != nil {
			return Result{}, err
		}
	}

	queued := operation.NewQueuedOperation(op)

	l, err := s.queue.Add(queued)
	if err != nil {
		return Result{}, errors.Wrap(err, "queue operation")
	}

	s.index(queued, sl)
	s.metrics.PendingOperations(l)

	return Result{Status: Accepted}, nil
}

// supersedeUpdate drops a pending update for the suffix: it was signed against the commitment
// that the recovery replaces.
func (s *Store) supersedeUpdate(suffix string) error {
	id, ok := s.slots[slotKey{suffix: suffix, slot: slotUpdate}]
	if !ok {
		return nil
	}

	if _, err := s.queue.Delete(id); err != nil {
		return errors.Wrapf(err, "remove superseded update %s", id)
	}

	s.unindex(id)

	logger.Info("Pending update superseded by recovery", log.WithOperationID(id), log.WithSuffix(suffix))

	return nil
}

// Peek returns up to num pending operations in acceptance order.
func (s *Store) Peek(num uint) ([]*operation.QueuedOperation, error) {
	return s.queue.Peek(num)
}

// Ack removes the given operations from the pending set and records them as anchored.
// Operations that are no longer pending are still recorded.
func (s *Store) Ack(ops ...*operation.QueuedOperation) error {
	ids := make([]string, len(ops))
	for i, op := range ops {
		ids[i] = op.OperationID
	}

	return s.MarkAnchored(ids...)
}

// MarkAnchored records operations observed in an anchored batch. Any of them still pending are
// removed from the pending set.
func (s *Store) MarkAnchored(operationIDs ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	l, err := s.queue.MarkAnchored(operationIDs...)
	if err != nil {
		return errors.Wrap(err, "mark operations anchored")
	}

	for _, id := range operationIDs {
		s.unindex(id)
	}

	s.metrics.PendingOperations(l)

	return nil
}

// IsAnchored returns true if the operation was anchored.
func (s *Store) IsAnchored(operationID string) bool {
	anchored, err := s.queue.IsAnchored(operationID)
	if err != nil {
		logger.Warn("Failed to check anchored operation", log.WithOperationID(operationID), log.WithError(err))

		return false
	}

	return anchored
}

// IsPending returns true if the operation is pending.
func (s *Store) IsPending(operationID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.pending[operationID]

	return ok
}

// Len returns the number of pending operations.
func (s *Store) Len() uint {
	return s.queue.Len()
}

func (s *Store) occupied(suffix string, sl slot) bool {
	_, ok := s.slots[slotKey{suffix: suffix, slot: sl}]

	return ok
}

func (s *Store) index(op *operation.QueuedOperation, sl slot) {
	s.pending[op.OperationID] = op
	s.slots[slotKey{suffix: op.UniqueSuffix, slot: sl}] = op.OperationID
	s.suffixPending[op.UniqueSuffix]++
}

func (s *Store) unindex(id string) {
	op, ok := s.pending[id]
	if !ok {
		return
	}

	delete(s.pending, id)

	if sl, err := slotOf(op.Type); err == nil {
		key := slotKey{suffix: op.UniqueSuffix, slot: sl}
		if s.slots[key] == id {
			delete(s.slots, key)
		}
	}

	s.suffixPending[op.UniqueSuffix]--
	if s.suffixPending[op.UniqueSuffix] <= 0 {
		delete(s.suffixPending, op.UniqueSuffix)
	}
}

func (s *Store) operationID(request []byte) (string, error) {
	canonical, err := canonicalizer.MarshalCanonical(request)
	if err != nil {
		return "", errors.Wrap(operation.ErrValidation, err.Error())
	}

	return hashing.CalculateMultihash(s.multihashCode, canonical)
}

func slotOf(t operation.Type) (slot, error) {
	switch t {
	case operation.TypeCreate:
		return slotCreate, nil
	case operation.TypeUpdate:
		return slotUpdate, nil
	case operation.TypeRecover, operation.TypeDeactivate:
		return slotRecovery, nil
	default:
		return 0, fmt.Errorf("operation type '%s' not supported", t)
	}
}

func rejected(reason string) Result {
	return Result{Status: Rejected, Reason: reason}
}
