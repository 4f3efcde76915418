/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package observer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/txn"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/txnprocessor"
)

var logger = log.New("sidetree-gateway-observer")

const (
	defaultRetryInterval  = 10 * time.Second
	defaultProcessTimeout = 30 * time.Second
)

// Ledger interface to access anchors.
type Ledger interface {
	RegisterForAnchors() <-chan struct{}
	Read(sinceAnchoredAt uint64) ([]*txn.AnchorReference, error)
}

// Providers contains all of the providers required by the Observer.
type Providers struct {
	Ledger         Ledger
	ProtocolClient protocol.Client
	OpStore        txnprocessor.OperationStore
	Cache          txnprocessor.ResolutionCache
}

type metricsProvider interface {
	AnchorProcessed(anchoredAt uint64)
}

type noopMetrics struct{}

func (noopMetrics) AnchorProcessed(uint64) {}

// Observer is notified of new anchors and processes them in order.
type Observer struct {
	*Providers

	retryInterval  time.Duration
	processTimeout time.Duration
	metrics        metricsProvider

	processed atomic.Uint64

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   atomic.Bool
}

// Option is an observer option.
type Option func(o *Observer)

// WithRetryInterval sets the interval after which an anchor that failed with a transient error is
// processed again.
func WithRetryInterval(interval time.Duration) Option {
	return func(o *Observer) {
		o.retryInterval = interval
	}
}

// WithProcessTimeout sets the timeout for processing one anchor.
func WithProcessTimeout(timeout time.Duration) Option {
	return func(o *Observer) {
		o.processTimeout = timeout
	}
}

// WithMetrics sets the metrics provider.
func WithMetrics(metrics metricsProvider) Option {
	return func(o *Observer) {
		o.metrics = metrics
	}
}

// New returns a new observer.
func New(providers *Providers, opts ...Option) *Observer {
	o := &Observer{
		Providers:      providers,
		retryInterval:  defaultRetryInterval,
		processTimeout: defaultProcessTimeout,
		metrics:        noopMetrics{},
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Start processes the anchors written so far and then starts the observer routine, so operations
// anchored before a restart are known to the operation store before new ones are accepted. An anchor
// that fails here is retried by the routine.
func (o *Observer) Start() {
	o.startOnce.Do(func() {
		o.started.Store(true)

		anchorsCh := o.Ledger.RegisterForAnchors()

		o.process()

		go o.listen(anchorsCh)
	})
}

// Stop stops the observer and waits for the current anchor to be processed.
func (o *Observer) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopCh)

		if o.started.Load() {
			<-o.doneCh
		}
	})
}

// Processed returns the sequence number of the last processed anchor.
func (o *Observer) Processed() uint64 {
	return o.processed.Load()
}

func (o *Observer) listen(anchorsCh <-chan struct{}) {
	defer close(o.doneCh)

	ticker := time.NewTicker(o.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stopCh:
			logger.Info("The observer has been stopped. Exiting.")

			return

		case _, ok := <-anchorsCh:
			if !ok {
				logger.Warn("Notification channel was closed. Exiting.")

				return
			}

			o.process()

		case <-ticker.C:
			o.process()
		}
	}
}

func (o *Observer) process() {
	anchors, err := o.Ledger.Read(o.processed.Load())
	if err != nil {
		logger.Warn("Failed to read anchors", log.WithSince(o.processed.Load()), log.WithError(err))

		return
	}

	for _, anchor := range anchors {
		select {
		case <-o.stopCh:
			return
		default:
		}

		if err := o.processAnchor(anchor); err != nil {
			// retried on the next notification or tick
			logger.Warn("Failed to process anchor", log.WithAnchoredAt(anchor.AnchoredAt),
				log.WithBatchHash(anchor.BatchHash), log.WithError(err))

			return
		}

		o.metrics.AnchorProcessed(anchor.AnchoredAt)
		o.processed.Store(anchor.AnchoredAt)
	}
}

func (o *Observer) processAnchor(anchor *txn.AnchorReference) error {
	v, err := o.ProtocolClient.Get(anchor.AnchoredAt)
	if err != nil {
		logger.Warn("Failed to get protocol version for anchor; skipping", log.WithAnchoredAt(anchor.AnchoredAt),
			log.WithError(err))

		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.processTimeout)
	defer cancel()

	tp := txnprocessor.New(&txnprocessor.Providers{
		OpStore:                   o.OpStore,
		Cache:                     o.Cache,
		OperationProtocolProvider: v.OperationProvider(),
	})

	n, err := tp.Process(ctx, anchor)
	if err != nil {
		if errors.Is(err, txn.ErrInvalidBatch) || errors.Is(err, cas.ErrContentNotFound) {
			logger.Warn("Integrity anomaly: skipping anchor", log.WithAnchoredAt(anchor.AnchoredAt),
				log.WithBatchHash(anchor.BatchHash), log.WithError(err))

			return nil
		}

		return err
	}

	logger.Debug("Successfully processed anchor", log.WithAnchoredAt(anchor.AnchoredAt),
		log.WithBatchHash(anchor.BatchHash), log.WithTotal(n))

	return nil
}
