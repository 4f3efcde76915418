/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package observer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/txn"
	"github.com/trustbloc/sidetree-gateway-go/pkg/batch/opqueue"
	"github.com/trustbloc/sidetree-gateway-go/pkg/ledger"
	"github.com/trustbloc/sidetree-gateway-go/pkg/mocks"
	"github.com/trustbloc/sidetree-gateway-go/pkg/opstore"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/factory"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func TestObserver(t *testing.T) {
	t.Run("processes anchors written before start", func(t *testing.T) {
		env := newTestEnv(t)

		ops := env.submit(t, 2)
		env.anchor(t, ops...)

		o := env.newObserver()
		o.Start()
		defer o.Stop()

		// the backlog is processed before Start returns
		require.Equal(t, uint64(1), o.Processed())

		for _, op := range ops {
			require.True(t, env.store.IsAnchored(op.OperationID))
			require.False(t, env.store.IsPending(op.OperationID))
		}

		require.Zero(t, env.store.Len())
		require.ElementsMatch(t, []string{ops[0].UniqueSuffix, ops[1].UniqueSuffix}, env.cache.invalidated())
	})

	t.Run("processes new anchors", func(t *testing.T) {
		env := newTestEnv(t)
		metrics := &anchorMetrics{}

		o := env.newObserver(WithMetrics(metrics))
		o.Start()
		defer o.Stop()

		env.anchor(t, env.submit(t, 1)...)
		require.Eventually(t, func() bool { return o.Processed() == 1 }, waitFor, tick)

		env.anchor(t, env.submit(t, 1)...)
		require.Eventually(t, func() bool { return o.Processed() == 2 }, waitFor, tick)

		require.Zero(t, env.store.Len())
		require.Equal(t, []uint64{1, 2}, metrics.get())
	})

	t.Run("invalid batch is skipped", func(t *testing.T) {
		env := newTestEnv(t)

		address, err := env.cas.Write(context.Background(), []byte("not a batch"))
		require.NoError(t, err)

		_, err = env.ledger.WriteAnchor(context.Background(), address, 0)
		require.NoError(t, err)

		ops := env.submit(t, 1)
		env.anchor(t, ops...)

		o := env.newObserver()
		o.Start()
		defer o.Stop()

		require.Eventually(t, func() bool { return o.Processed() == 2 }, waitFor, tick)
		require.True(t, env.store.IsAnchored(ops[0].OperationID))
	})

	t.Run("missing batch is skipped", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.ledger.WriteAnchor(context.Background(), "QmUnknown", 0)
		require.NoError(t, err)

		o := env.newObserver()
		o.Start()
		defer o.Stop()

		require.Eventually(t, func() bool { return o.Processed() == 1 }, waitFor, tick)
	})

	t.Run("transient error is retried", func(t *testing.T) {
		env := newTestEnv(t)

		ops := env.submit(t, 1)
		env.anchor(t, ops...)

		env.cas.SetReadErrors(errors.New("connection refused"))

		o := env.newObserver(WithRetryInterval(20 * time.Millisecond))
		o.Start()
		defer o.Stop()

		require.Eventually(t, func() bool { return o.Processed() == 1 }, waitFor, tick)
		require.True(t, env.store.IsAnchored(ops[0].OperationID))
		require.Equal(t, 2, env.cas.ReadCount())
	})

	t.Run("protocol error", func(t *testing.T) {
		env := newTestEnv(t)
		env.pc.Err = errors.New("protocol error")

		env.anchor(t, env.submit(t, 1)...)

		o := env.newObserver()
		o.Start()
		defer o.Stop()

		require.Eventually(t, func() bool { return o.Processed() == 1 }, waitFor, tick)
		require.Equal(t, uint(1), env.store.Len())
	})

	t.Run("ledger read error", func(t *testing.T) {
		env := newTestEnv(t)

		l := &mockLedger{ch: make(chan struct{}, 1), err: errors.New("read error")}

		o := New(&Providers{Ledger: l, ProtocolClient: env.pc, OpStore: env.store, Cache: env.cache},
			WithRetryInterval(20*time.Millisecond))
		o.Start()
		defer o.Stop()

		require.Eventually(t, func() bool { return l.reads() > 1 }, waitFor, tick)
		require.Zero(t, o.Processed())
	})

	t.Run("notification channel closed", func(t *testing.T) {
		env := newTestEnv(t)

		l := &mockLedger{ch: make(chan struct{})}
		close(l.ch)

		o := New(&Providers{Ledger: l, ProtocolClient: env.pc, OpStore: env.store, Cache: env.cache})
		o.Start()

		select {
		case <-o.doneCh:
		case <-time.After(waitFor):
			t.Fatal("observer did not exit")
		}

		o.Stop()
	})

	t.Run("stop", func(t *testing.T) {
		env := newTestEnv(t)

		o := env.newObserver()
		o.Stop()
		o.Stop()

		o = env.newObserver()
		o.Start()
		o.Start()
		o.Stop()
		o.Stop()
	})
}

type testEnv struct {
	cas    *mocks.MockCasClient
	ledger *ledger.Ledger
	pc     *mocks.MockProtocolClient
	pv     protocol.Version
	store  *opstore.Store
	cache  *mockCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	casClient := mocks.NewMockCasClient(nil)

	pv, err := factory.New().Create("1.0", mocks.GetDefaultProtocolParameters(), casClient, &mocks.MetricsProvider{})
	require.NoError(t, err)

	store, err := opstore.New(&opqueue.MemQueue{})
	require.NoError(t, err)

	l := ledger.New()

	t.Cleanup(func() {
		require.NoError(t, l.Close())
	})

	return &testEnv{
		cas:    casClient,
		ledger: l,
		pc:     mocks.NewMockProtocolClient(pv),
		pv:     pv,
		store:  store,
		cache:  &mockCache{},
	}
}

func (e *testEnv) newObserver(opts ...Option) *Observer {
	return New(&Providers{
		Ledger:         e.ledger,
		ProtocolClient: e.pc,
		OpStore:        e.store,
		Cache:          e.cache,
	}, opts...)
}

func (e *testEnv) submit(t *testing.T, n int) []*operation.QueuedOperation {
	t.Helper()

	var ops []*operation.QueuedOperation

	for i := 0; i < n; i++ {
		did, err := mocks.NewDID(mocks.DefaultDocument)
		require.NoError(t, err)

		op, err := e.pv.OperationParser().Parse(mocks.DefaultNS, did.CreateRequest)
		require.NoError(t, err)

		result, err := e.store.Submit(op)
		require.NoError(t, err)
		require.True(t, result.IsAccepted())

		ops = append(ops, operation.NewQueuedOperation(op))
	}

	return ops
}

// anchor writes the operations as one batch and anchors it without acknowledging them.
func (e *testEnv) anchor(t *testing.T, ops ...*operation.QueuedOperation) {
	t.Helper()

	batchHash, err := e.pv.OperationHandler().PrepareBatch(context.Background(), ops)
	require.NoError(t, err)

	_, err = e.ledger.WriteAnchor(context.Background(), batchHash, e.pv.Protocol().StartingAnchorPoint)
	require.NoError(t, err)
}

type mockCache struct {
	mutex    sync.Mutex
	suffixes []string
}

func (m *mockCache) Invalidate(suffixes ...string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.suffixes = append(m.suffixes, suffixes...)
}

func (m *mockCache) invalidated() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]string(nil), m.suffixes...)
}

type mockLedger struct {
	ch  chan struct{}
	err error

	mutex sync.Mutex
	count int
}

func (m *mockLedger) RegisterForAnchors() <-chan struct{} {
	return m.ch
}

func (m *mockLedger) Read(uint64) ([]*txn.AnchorReference, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.count++

	return nil, m.err
}

func (m *mockLedger) reads() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.count
}

type anchorMetrics struct {
	mutex    sync.Mutex
	anchored []uint64
}

func (m *anchorMetrics) AnchorProcessed(anchoredAt uint64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.anchored = append(m.anchored, anchoredAt)
}

func (m *anchorMetrics) get() []uint64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]uint64(nil), m.anchored...)
}
