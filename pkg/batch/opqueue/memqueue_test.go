/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package opqueue

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
)

var (
	op1 = &operation.QueuedOperation{OperationID: "id1", Namespace: "ns", UniqueSuffix: "op1", OperationRequest: []byte("op1")}
	op2 = &operation.QueuedOperation{OperationID: "id2", Namespace: "ns", UniqueSuffix: "op2", OperationRequest: []byte("op2")}
	op3 = &operation.QueuedOperation{OperationID: "id3", Namespace: "ns", UniqueSuffix: "op3", OperationRequest: []byte("op3")}
)

func TestMemQueue(t *testing.T) {
	testQueue(t, &MemQueue{})
}

func TestLevelDBQueue(t *testing.T) {
	q, err := NewInMemoryLevelDBQueue()
	require.NoError(t, err)

	defer func() { require.NoError(t, q.Close()) }()

	testQueue(t, q)
}

func TestLevelDBQueue_Restore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue")

	q, err := OpenLevelDBQueue(path)
	require.NoError(t, err)

	for _, op := range []*operation.QueuedOperation{op1, op2, op3} {
		_, err = q.Add(op)
		require.NoError(t, err)
	}

	_, _, err = q.Remove(1)
	require.NoError(t, err)
	require.NoError(t, q.Close())

	q, err = OpenLevelDBQueue(path)
	require.NoError(t, err)

	defer func() { require.NoError(t, q.Close()) }()

	require.Equal(t, uint(2), q.Len())

	op4 := &operation.QueuedOperation{OperationID: "id4", UniqueSuffix: "op4"}

	l, err := q.Add(op4)
	require.NoError(t, err)
	require.Equal(t, uint(3), l)

	ops, err := q.All()
	require.NoError(t, err)
	require.Equal(t, []*operation.QueuedOperation{op2, op3, op4}, ops)

	deleted, err := q.Delete("id3")
	require.NoError(t, err)
	require.True(t, deleted)

	ops, err = q.All()
	require.NoError(t, err)
	require.Equal(t, []*operation.QueuedOperation{op2, op4}, ops)

	l, err = q.MarkAnchored("id2")
	require.NoError(t, err)
	require.Equal(t, uint(1), l)
	require.NoError(t, q.Close())

	q, err = OpenLevelDBQueue(path)
	require.NoError(t, err)

	require.Equal(t, uint(1), q.Len())

	anchored, err := q.IsAnchored("id2")
	require.NoError(t, err)
	require.True(t, anchored)

	anchored, err = q.IsAnchored("id4")
	require.NoError(t, err)
	require.False(t, anchored)

	ops, err = q.All()
	require.NoError(t, err)
	require.Equal(t, []*operation.QueuedOperation{op4}, ops)
}

func testQueue(t *testing.T, q Queue) {
	t.Helper()

	require.Zero(t, q.Len())

	ops, err := q.Peek(1)
	require.NoError(t, err)
	require.Empty(t, ops)

	l, err := q.Add(op1)
	require.NoError(t, err)
	require.Equal(t, uint(1), l)
	require.Equal(t, uint(1), q.Len())

	l, err = q.Add(op2)
	require.NoError(t, err)
	require.Equal(t, uint(2), l)

	l, err = q.Add(op3)
	require.NoError(t, err)
	require.Equal(t, uint(3), l)
	require.Equal(t, uint(3), q.Len())

	ops, err = q.Peek(1)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, op1, ops[0])

	ops, err = q.Peek(4)
	require.NoError(t, err)
	require.Equal(t, []*operation.QueuedOperation{op1, op2, op3}, ops)

	n, l, err := q.Remove(1)
	require.NoError(t, err)
	require.Equal(t, uint(1), n)
	require.Equal(t, uint(2), l)

	ops, err = q.Peek(1)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, op2, ops[0])

	deleted, err := q.Delete("id2")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = q.Delete("id2")
	require.NoError(t, err)
	require.False(t, deleted)

	ops, err = q.All()
	require.NoError(t, err)
	require.Equal(t, []*operation.QueuedOperation{op3}, ops)

	n, l, err = q.Remove(5)
	require.NoError(t, err)
	require.Equal(t, uint(1), n)
	require.Zero(t, l)
	require.Zero(t, q.Len())

	testMarkAnchored(t, q)
}

func testMarkAnchored(t *testing.T, q Queue) {
	t.Helper()

	for _, op := range []*operation.QueuedOperation{op1, op2, op3} {
		_, err := q.Add(op)
		require.NoError(t, err)
	}

	anchored, err := q.IsAnchored("id2")
	require.NoError(t, err)
	require.False(t, anchored)

	// id2 is in the middle of the queue and "foreign" was never queued
	l, err := q.MarkAnchored("id2", "foreign")
	require.NoError(t, err)
	require.Equal(t, uint(2), l)
	require.Equal(t, uint(2), q.Len())

	ops, err := q.All()
	require.NoError(t, err)
	require.Equal(t, []*operation.QueuedOperation{op1, op3}, ops)

	for _, id := range []string{"id2", "foreign"} {
		anchored, err = q.IsAnchored(id)
		require.NoError(t, err)
		require.True(t, anchored, id)
	}

	anchored, err = q.IsAnchored("id1")
	require.NoError(t, err)
	require.False(t, anchored)

	l, err = q.MarkAnchored("id1", "id3", "id1")
	require.NoError(t, err)
	require.Zero(t, l)
	require.Zero(t, q.Len())

	anchored, err = q.IsAnchored("id3")
	require.NoError(t, err)
	require.True(t, anchored)
}
