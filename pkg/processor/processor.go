/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/txn"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-processor")

const defaultCacheSize = 10000

var (
	// ErrDocumentNotFound is returned when no valid create operation is anchored for the suffix.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrRetryable is returned when a batch could not be read. The resolution may succeed later.
	ErrRetryable = errors.New("resolution failed with a transient error")
)

// AnchorReader reads the anchor history of the anchoring medium.
type AnchorReader interface {
	// Read returns the anchors after the given anchor point in ascending order.
	Read(sinceAnchoredAt uint64) ([]*txn.AnchorReference, error)
}

// Integrity anomaly kinds.
const (
	AnomalyInvalidBatch     = "invalid-batch"
	AnomalyInvalidOperation = "invalid-operation"
)

type metricsProvider interface {
	ResolveTime(value time.Duration)
	ResolutionCacheHit(hit bool)
	IntegrityAnomaly(kind string)
}

type noopMetrics struct{}

func (noopMetrics) ResolveTime(time.Duration) {}
func (noopMetrics) ResolutionCacheHit(bool)   {}
func (noopMetrics) IntegrityAnomaly(string)   {}

// OperationProcessor folds the anchored operations of a document, in anchor order, into its
// resolution model.
type OperationProcessor struct {
	name    string
	anchors AnchorReader
	pc      protocol.Client
	metrics metricsProvider

	mutex sync.Mutex
	cache *lru.Cache
}

// cached is the state of a document folded from all anchors up to and including anchoredAt.
// rm is nil when no valid create was found.
type cached struct {
	rm         *protocol.ResolutionModel
	anchoredAt uint64
}

// Option is an operation processor option.
type Option func(opts *options)

type options struct {
	cacheSize int
	metrics   metricsProvider
}

// WithCacheSize sets the number of resolution models kept in the cache.
func WithCacheSize(size int) Option {
	return func(opts *options) {
		opts.cacheSize = size
	}
}

// WithMetrics sets the metrics provider.
func WithMetrics(metrics metricsProvider) Option {
	return func(opts *options) {
		opts.metrics = metrics
	}
}

// New returns new operation processor with the given name. (Note that name is only used for logging.)
func New(name string, anchors AnchorReader, pc protocol.Client, opts ...Option) (*OperationProcessor, error) {
	o := &options{
		cacheSize: defaultCacheSize,
		metrics:   noopMetrics{},
	}

	for _, opt := range opts {
		opt(o)
	}

	cache, err := lru.New(o.cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create resolution cache")
	}

	return &OperationProcessor{
		name:    name,
		anchors: anchors,
		pc:      pc,
		metrics: o.metrics,
		cache:   cache,
	}, nil
}

// Resolve document based on the given unique suffix.
// Parameters:
// uniqueSuffix - unique portion of ID to resolve. for example "abc123" in "did:sidetree:abc123".
func (s *OperationProcessor) Resolve(ctx context.Context, uniqueSuffix string) (*protocol.ResolutionModel, error) {
	start := time.Now()

	defer func() {
		s.metrics.ResolveTime(time.Since(start))
	}()

	var rm *protocol.ResolutionModel

	var since uint64

	if entry, ok := s.get(uniqueSuffix); ok {
		s.metrics.ResolutionCacheHit(true)

		rm = entry.rm
		since = entry.anchoredAt
	} else {
		s.metrics.ResolutionCacheHit(false)
	}

	anchors, err := s.anchors.Read(since)
	if err != nil {
		return nil, errors.Wrap(err, "read anchors")
	}

	complete := true
	consulted := since

	for _, anchor := range anchors {
		rm, err = s.processAnchor(ctx, uniqueSuffix, anchor, rm)
		if err != nil {
			if !errors.Is(err, cas.ErrContentNotFound) {
				return nil, err
			}

			// content may show up later: keep going but don't cache the result
			logger.Warn("Batch content not found; skipping anchor", log.WithSuffix(uniqueSuffix),
				log.WithAnchoredAt(anchor.AnchoredAt), log.WithBatchHash(anchor.BatchHash), log.WithError(err))

			complete = false

			continue
		}

		consulted = anchor.AnchoredAt
	}

	if complete {
		s.put(uniqueSuffix, &cached{rm: rm, anchoredAt: consulted})
	}

	if rm == nil {
		return nil, ErrDocumentNotFound
	}

	if !complete {
		// rm may be shared with the cache
		rm, err = rm.Clone()
		if err != nil {
			return nil, errors.Wrap(err, "clone resolution model")
		}

		rm.Incomplete = true
	}

	return rm, nil
}

// Invalidate removes cached resolution models.
func (s *OperationProcessor) Invalidate(suffixes ...string) {
	for _, suffix := range suffixes {
		s.cache.Remove(suffix)
	}
}

func (s *OperationProcessor) processAnchor(ctx context.Context, uniqueSuffix string, anchor *txn.AnchorReference,
	rm *protocol.ResolutionModel) (*protocol.ResolutionModel, error) {
	pv, err := s.pc.Get(anchor.AnchoredAt)
	if err != nil {
		return nil, errors.Wrapf(err, "get protocol version for anchor %d", anchor.AnchoredAt)
	}

	ops, err := pv.OperationProvider().GetOperations(ctx, anchor)
	if err != nil {
		switch {
		case errors.Is(err, txn.ErrInvalidBatch):
			logger.Warn("Integrity anomaly: skipping invalid batch", log.WithAnchoredAt(anchor.AnchoredAt),
				log.WithBatchHash(anchor.BatchHash), log.WithError(err))

			s.metrics.IntegrityAnomaly(AnomalyInvalidBatch)

			return rm, nil
		case errors.Is(err, cas.ErrContentNotFound):
			return rm, err
		default:
			return nil, fmt.Errorf("%w: anchor[%d]: %w", ErrRetryable, anchor.AnchoredAt, err)
		}
	}

	for _, op := range ops {
		if op.UniqueSuffix != uniqueSuffix {
			continue
		}

		rm = s.applyOperation(pv, op, rm)
	}

	return rm, nil
}

// applyOperation applies the operation or, if it is invalid, skips it and keeps the current model.
func (s *OperationProcessor) applyOperation(pv protocol.Version, op *operation.AnchoredOperation,
	rm *protocol.ResolutionModel) *protocol.ResolutionModel {
	result, err := pv.OperationApplier().Apply(op, rm)
	if err != nil {
		logger.Warn("Integrity anomaly: skipping operation", log.WithSuffix(op.UniqueSuffix),
			log.WithOperationType(string(op.Type)), log.WithAnchoredAt(op.AnchoredAt),
			log.WithBatchHash(op.BatchHash), log.WithError(err))

		s.metrics.IntegrityAnomaly(AnomalyInvalidOperation)

		return rm
	}

	logger.Debug("Applied operation", log.WithSuffix(op.UniqueSuffix), log.WithOperationType(string(op.Type)),
		log.WithAnchoredAt(op.AnchoredAt))

	return result
}

func (s *OperationProcessor) get(uniqueSuffix string) (*cached, bool) {
	entry, ok := s.cache.Get(uniqueSuffix)
	if !ok {
		return nil, false
	}

	return entry.(*cached), true //nolint:forcetypeassert
}

// put never replaces a model with one folded from fewer anchors.
func (s *OperationProcessor) put(uniqueSuffix string, entry *cached) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, ok := s.get(uniqueSuffix); ok && existing.anchoredAt > entry.anchoredAt {
		return
	}

	s.cache.Add(uniqueSuffix, entry)
}
