/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txnprocessor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/txn"
)

func TestProcess(t *testing.T) {
	anchor := &txn.AnchorReference{BatchHash: "hash", AnchoredAt: 3}

	t.Run("success", func(t *testing.T) {
		store := &mockStore{}
		cache := &mockCache{}

		p := New(&Providers{
			OpStore: store,
			Cache:   cache,
			OperationProtocolProvider: &mockProvider{ops: []*operation.AnchoredOperation{
				{UniqueSuffix: "abc", OperationID: "id1"},
				{UniqueSuffix: "def", OperationID: "id2"},
				{UniqueSuffix: "abc", OperationID: "id3"},
			}},
		})

		n, err := p.Process(context.Background(), anchor)
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Equal(t, []string{"id1", "id2", "id3"}, store.ids)
		require.Equal(t, []string{"abc", "def"}, cache.suffixes)
	})

	t.Run("empty batch", func(t *testing.T) {
		cache := &mockCache{}

		p := New(&Providers{OpStore: &mockStore{}, Cache: cache, OperationProtocolProvider: &mockProvider{}})

		n, err := p.Process(context.Background(), anchor)
		require.NoError(t, err)
		require.Zero(t, n)
		require.Empty(t, cache.suffixes)
	})

	t.Run("provider error", func(t *testing.T) {
		cache := &mockCache{}

		p := New(&Providers{
			OpStore:                   &mockStore{},
			Cache:                     cache,
			OperationProtocolProvider: &mockProvider{err: txn.ErrInvalidBatch},
		})

		n, err := p.Process(context.Background(), anchor)
		require.ErrorIs(t, err, txn.ErrInvalidBatch)
		require.Zero(t, n)
		require.Contains(t, err.Error(), "failed to retrieve operations for anchor[3]")
		require.Empty(t, cache.suffixes)
	})

	t.Run("store error", func(t *testing.T) {
		cache := &mockCache{}

		p := New(&Providers{
			OpStore: &mockStore{err: errors.New("store error")},
			Cache:   cache,
			OperationProtocolProvider: &mockProvider{ops: []*operation.AnchoredOperation{
				{UniqueSuffix: "abc", OperationID: "id1"},
			}},
		})

		n, err := p.Process(context.Background(), anchor)
		require.Error(t, err)
		require.Zero(t, n)
		require.Contains(t, err.Error(), "store error")
		require.Empty(t, cache.suffixes)
	})
}

type mockProvider struct {
	ops []*operation.AnchoredOperation
	err error
}

func (m *mockProvider) GetOperations(context.Context, *txn.AnchorReference) ([]*operation.AnchoredOperation, error) {
	return m.ops, m.err
}

type mockStore struct {
	ids []string
	err error
}

func (m *mockStore) MarkAnchored(operationIDs ...string) error {
	if m.err != nil {
		return m.err
	}

	m.ids = append(m.ids, operationIDs...)

	return nil
}

type mockCache struct {
	suffixes []string
}

func (m *mockCache) Invalidate(suffixes ...string) {
	m.suffixes = append(m.suffixes, suffixes...)
}
