/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package batch batches pending operations into batch files, stores the batch files in a
// content-addressable storage (CAS) and anchors the batch hash on the anchoring medium.
//
// Batch Writer basic flow:
//
// 1) get notified when operations are accepted into the operation store
// 2) 'cut' up to the maximum number of pending operations into a batch
// 3) store the batch file into CAS (content addressable storage)
// 4) write the batch hash to the anchoring medium
// 5) ack the batch operations in the operation store
package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/txn"
	"github.com/trustbloc/sidetree-gateway-go/pkg/batch/cutter"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-writer")

const (
	defaultBatchTimeout = 2 * time.Second
	defaultWriteTimeout = 30 * time.Second
)

// ErrStopped is returned when the writer has been stopped.
var ErrStopped = errors.New("writer is stopped")

// Option defines Writer options such as batch timeout.
type Option func(opts *Options) error

type batchCutter interface {
	Cut(force bool) (cutter.Result, error)
}

// OperationStore holds the pending operations.
type OperationStore interface {
	cutter.OperationQueue

	// Ack removes anchored operations from the pending set.
	Ack(ops ...*operation.QueuedOperation) error
}

// Context contains batch writer context.
// 1) protocol information client
// 2) anchor writer
// 3) pending operation store.
type Context interface {
	Protocol() protocol.Client
	Anchor() AnchorWriter
	OperationStore() OperationStore
}

// AnchorWriter defines an interface to access the underlying anchoring medium.
type AnchorWriter interface {
	// WriteAnchor records the batch hash on the anchoring medium.
	WriteAnchor(ctx context.Context, batchHash string, protocolVersion uint64) (*txn.AnchorReference, error)
}

type metricsProvider interface {
	BatchCut(size uint)
	BatchWriteTime(value time.Duration)
	BatchWriteFailed()
}

type noopMetrics struct{}

func (noopMetrics) BatchCut(uint)                {}
func (noopMetrics) BatchWriteTime(time.Duration) {}
func (noopMetrics) BatchWriteFailed()            {}

// CutResult is the result of a cut.
type CutResult struct {
	// NoOp is true when there was nothing to cut. Nothing was written to CAS or anchored.
	NoOp bool

	// Anchor is the anchor of the written batch.
	Anchor *txn.AnchorReference

	// Operations is the number of operations in the batch.
	Operations int

	// Pending is the number of operations still pending.
	Pending uint
}

// Writer implements batch writer.
type Writer struct {
	namespace    string
	context      Context
	batchCutter  batchCutter
	metrics      metricsProvider
	mutex        sync.Mutex
	notifyChan   chan struct{}
	exitChan     chan struct{}
	doneChan     chan struct{}
	batchTimeout time.Duration
	writeTimeout time.Duration
	started      uint32
	stopped      uint32
}

// New creates a new Writer with the given namespace.
func New(namespace string, context Context, options ...Option) (*Writer, error) {
	rOpts, err := prepareOptsFromOptions(options...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read opts")
	}

	batchTimeout := defaultBatchTimeout
	if rOpts.BatchTimeout != 0 {
		batchTimeout = rOpts.BatchTimeout
	}

	writeTimeout := defaultWriteTimeout
	if rOpts.WriteTimeout != 0 {
		writeTimeout = rOpts.WriteTimeout
	}

	var metrics metricsProvider = noopMetrics{}
	if rOpts.Metrics != nil {
		metrics = rOpts.Metrics
	}

	return &Writer{
		namespace: namespace,
		batchCutter: cutter.New(context.Protocol(), context.OperationStore(),
			cutter.WithMaxOperationsPerBatch(rOpts.MaxOperationsPerBatch)),
		notifyChan:   make(chan struct{}, 1),
		exitChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
		batchTimeout: batchTimeout,
		writeTimeout: writeTimeout,
		context:      context,
		metrics:      metrics,
	}, nil
}

// Start periodic anchoring of operation batches to the anchoring medium.
func (r *Writer) Start() {
	if !atomic.CompareAndSwapUint32(&r.started, 0, 1) {
		return
	}

	go r.main()
}

// Stop stops the background loop and waits for an in-flight batch to complete.
func (r *Writer) Stop() {
	if !atomic.CompareAndSwapUint32(&r.stopped, 0, 1) {
		// Already stopped
		return
	}

	close(r.exitChan)

	if atomic.LoadUint32(&r.started) == 1 {
		<-r.doneChan
	}
}

// Stopped returns true if the writer has been stopped.
func (r *Writer) Stopped() bool {
	return atomic.LoadUint32(&r.stopped) == 1
}

// Notify tells the writer that operations were added to the operation store. Full batches are
// cut right away; the rest wait for the batch timeout.
func (r *Writer) Notify() {
	select {
	case r.notifyChan <- struct{}{}:
	default:
		// a notification is already pending
	}
}

// Cut cuts and anchors one batch of pending operations, if there are any.
func (r *Writer) Cut(ctx context.Context) (*CutResult, error) {
	if r.Stopped() {
		return nil, ErrStopped
	}

	return r.cutAndProcess(ctx, true)
}

func (r *Writer) main() {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.batchTimeout)
	defer ticker.Stop()

	// On startup, there may be operations in the store. Process them immediately.
	r.processAvailable(true)

	for {
		select {
		case <-r.notifyChan:
			r.processAvailable(false)

		case <-ticker.C:
			r.processAvailable(true)

		case <-r.exitChan:
			logger.Info("Exiting batch writer", log.WithNamespace(r.namespace))

			return
		}
	}
}

// processAvailable cuts full batches until there are none left and then, if forced, the
// remaining partial batch.
func (r *Writer) processAvailable(force bool) {
	for {
		if r.Stopped() {
			return
		}

		result, err := r.cutAndProcessWithTimeout(false)
		if err != nil {
			logger.Warn("Error processing full batch", log.WithNamespace(r.namespace), log.WithError(err))

			return
		}

		if result.NoOp {
			break
		}
	}

	if !force {
		return
	}

	result, err := r.cutAndProcessWithTimeout(true)
	if err != nil {
		logger.Warn("Error processing batch", log.WithNamespace(r.namespace), log.WithError(err))

		return
	}

	if !result.NoOp {
		logger.Info("Processed batch", log.WithNamespace(r.namespace), log.WithTotal(result.Operations),
			log.WithTotalPending(result.Pending))
	}
}

func (r *Writer) cutAndProcessWithTimeout(force bool) (*CutResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	return r.cutAndProcess(ctx, force)
}

// cutAndProcess is serialized: never two concurrent cuts.
func (r *Writer) cutAndProcess(ctx context.Context, force bool) (*CutResult, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	result, err := r.batchCutter.Cut(force)
	if err != nil {
		return nil, errors.Wrap(err, "cut batch")
	}

	if len(result.Operations) == 0 {
		return &CutResult{NoOp: true, Pending: result.Pending}, nil
	}

	r.metrics.BatchCut(uint(len(result.Operations)))

	logger.Debug("Processing batch", log.WithNamespace(r.namespace), log.WithTotal(len(result.Operations)),
		log.WithProtocolVersion(result.ProtocolVersion))

	start := time.Now()

	anchor, err := r.process(ctx, result.Operations, result.ProtocolVersion)
	if err != nil {
		r.metrics.BatchWriteFailed()

		// operations stay pending and are retried with the next cut
		return nil, errors.Wrapf(err, "process batch of %d operations", len(result.Operations))
	}

	r.metrics.BatchWriteTime(time.Since(start))

	if err := r.context.OperationStore().Ack(result.Operations...); err != nil {
		return nil, errors.Wrap(err, "ack anchored operations")
	}

	logger.Info("Anchored batch", log.WithNamespace(r.namespace), log.WithBatchHash(anchor.BatchHash),
		log.WithAnchoredAt(anchor.AnchoredAt), log.WithTotal(len(result.Operations)))

	return &CutResult{
		Anchor:     anchor,
		Operations: len(result.Operations),
		Pending:    result.Pending,
	}, nil
}

func (r *Writer) process(ctx context.Context, ops []*operation.QueuedOperation,
	protocolVersion uint64) (*txn.AnchorReference, error) {
	p, err := r.context.Protocol().Get(protocolVersion)
	if err != nil {
		return nil, err
	}

	batchHash, err := p.OperationHandler().PrepareBatch(ctx, ops)
	if err != nil {
		return nil, err
	}

	return r.context.Anchor().WriteAnchor(ctx, batchHash, protocolVersion)
}

// WithBatchTimeout allows for specifying batch timeout.
func WithBatchTimeout(batchTimeout time.Duration) Option {
	return func(o *Options) error {
		o.BatchTimeout = batchTimeout

		return nil
	}
}

// WithWriteTimeout sets the deadline for writing one batch to CAS and anchoring it.
func WithWriteTimeout(writeTimeout time.Duration) Option {
	return func(o *Options) error {
		o.WriteTimeout = writeTimeout

		return nil
	}
}

// WithMaxOperationsPerBatch caps the batch size below the protocol's maximum operation count.
func WithMaxOperationsPerBatch(max uint) Option {
	return func(o *Options) error {
		o.MaxOperationsPerBatch = max

		return nil
	}
}

// WithMetrics sets the metrics provider.
func WithMetrics(metrics metricsProvider) Option {
	return func(o *Options) error {
		if metrics == nil {
			return errors.New("metrics provider is nil")
		}

		o.Metrics = metrics

		return nil
	}
}

// Options allows the user to specify more advanced options.
type Options struct {
	BatchTimeout          time.Duration
	WriteTimeout          time.Duration
	MaxOperationsPerBatch uint
	Metrics               metricsProvider
}

// prepareOptsFromOptions reads options.
func prepareOptsFromOptions(options ...Option) (Options, error) {
	rOpts := Options{}
	for _, option := range options {
		err := option(&rOpts)
		if err != nil {
			return rOpts, err
		}
	}

	return rOpts, nil
}
