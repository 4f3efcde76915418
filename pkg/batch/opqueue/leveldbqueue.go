/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package opqueue

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-opqueue")

var (
	queuePrefix    = []byte("q/")
	anchoredPrefix = []byte("a/")
)

// LevelDBQueue is a durable operation queue. Operations survive restarts in acceptance order, and so
// do the IDs of anchored operations, which are kept under their own key prefix.
type LevelDBQueue struct {
	mutex   sync.RWMutex
	db      *leveldb.DB
	nextSeq uint64
	keys    map[string][]byte
	length  uint
}

// OpenLevelDBQueue opens (or creates) the queue at the given path.
func OpenLevelDBQueue(path string) (*LevelDBQueue, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open operation queue at %s", path)
	}

	return newLevelDBQueue(db)
}

// NewInMemoryLevelDBQueue returns a LevelDB queue backed by memory storage.
func NewInMemoryLevelDBQueue() (*LevelDBQueue, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "open in-memory operation queue")
	}

	return newLevelDBQueue(db)
}

func newLevelDBQueue(db *leveldb.DB) (*LevelDBQueue, error) {
	q := &LevelDBQueue{
		db:   db,
		keys: make(map[string][]byte),
	}

	iter := db.NewIterator(util.BytesPrefix(queuePrefix), nil)
	defer iter.Release()

	for iter.Next() {
		op, err := unmarshal(iter.Value())
		if err != nil {
			return nil, err
		}

		key := append([]byte{}, iter.Key()...)

		q.keys[op.OperationID] = key
		q.length++
		q.nextSeq = seqOf(key) + 1
	}

	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "restore operation queue")
	}

	logger.Info("Opened operation queue", log.WithTotalPending(q.length))

	return q, nil
}

// Add adds the given operation to the tail of the queue and returns the new length of the queue.
func (q *LevelDBQueue) Add(op *operation.QueuedOperation) (uint, error) {
	value, err := json.Marshal(op)
	if err != nil {
		return 0, errors.Wrap(err, "marshal queued operation")
	}

	q.mutex.Lock()
	defer q.mutex.Unlock()

	key := seqKey(q.nextSeq)

	if err := q.db.Put(key, value, nil); err != nil {
		return 0, errors.Wrap(err, "store queued operation")
	}

	q.nextSeq++
	q.keys[op.OperationID] = key
	q.length++

	return q.length, nil
}

// Peek returns (up to) the given number of operations from the head of the queue but does not remove them.
func (q *LevelDBQueue) Peek(num uint) ([]*operation.QueuedOperation, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	ops, _, err := q.head(num)

	return ops, err
}

// Remove removes (up to) the given number of operations from the head of the queue.
func (q *LevelDBQueue) Remove(num uint) (uint, uint, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	ops, keys, err := q.head(num)
	if err != nil {
		return 0, q.length, err
	}

	b := new(leveldb.Batch)
	for _, key := range keys {
		b.Delete(key)
	}

	if err := q.db.Write(b, nil); err != nil {
		return 0, q.length, errors.Wrap(err, "remove queued operations")
	}

	for _, op := range ops {
		delete(q.keys, op.OperationID)
	}

	q.length -= uint(len(ops))

	return uint(len(ops)), q.length, nil
}

// Delete removes the operation with the given ID.
func (q *LevelDBQueue) Delete(operationID string) (bool, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	key, ok := q.keys[operationID]
	if !ok {
		return false, nil
	}

	if err := q.db.Delete(key, nil); err != nil {
		return false, errors.Wrap(err, "delete queued operation")
	}

	delete(q.keys, operationID)
	q.length--

	return true, nil
}

// All returns all queued operations.
func (q *LevelDBQueue) All() ([]*operation.QueuedOperation, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	ops, _, err := q.head(q.length)

	return ops, err
}

// Len returns the length of the queue.
func (q *LevelDBQueue) Len() uint {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	return q.length
}

// MarkAnchored removes the operations with the given IDs and records them as anchored in one batch.
func (q *LevelDBQueue) MarkAnchored(operationIDs ...string) (uint, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	b := new(leveldb.Batch)

	for _, id := range operationIDs {
		if key, ok := q.keys[id]; ok {
			b.Delete(key)
		}

		b.Put(anchoredKey(id), []byte{})
	}

	if err := q.db.Write(b, nil); err != nil {
		return q.length, errors.Wrap(err, "mark operations anchored")
	}

	for _, id := range operationIDs {
		if _, ok := q.keys[id]; ok {
			delete(q.keys, id)
			q.length--
		}
	}

	return q.length, nil
}

// IsAnchored returns true if the operation was recorded as anchored.
func (q *LevelDBQueue) IsAnchored(operationID string) (bool, error) {
	ok, err := q.db.Has(anchoredKey(operationID), nil)
	if err != nil {
		return false, errors.Wrapf(err, "check anchored operation %s", operationID)
	}

	return ok, nil
}

// Close closes the underlying database.
func (q *LevelDBQueue) Close() error {
	return q.db.Close()
}

func (q *LevelDBQueue) head(num uint) ([]*operation.QueuedOperation, [][]byte, error) {
	var (
		ops  []*operation.QueuedOperation
		keys [][]byte
	)

	iter := q.db.NewIterator(util.BytesPrefix(queuePrefix), nil)
	defer iter.Release()

	for uint(len(ops)) < num && iter.Next() {
		op, err := unmarshal(iter.Value())
		if err != nil {
			return nil, nil, err
		}

		ops = append(ops, op)
		keys = append(keys, append([]byte{}, iter.Key()...))
	}

	if err := iter.Error(); err != nil {
		return nil, nil, errors.Wrap(err, "iterate operation queue")
	}

	return ops, keys, nil
}

func unmarshal(value []byte) (*operation.QueuedOperation, error) {
	op := &operation.QueuedOperation{}
	if err := json.Unmarshal(value, op); err != nil {
		return nil, errors.Wrap(err, "unmarshal queued operation")
	}

	return op, nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, len(queuePrefix)+8)
	copy(key, queuePrefix)
	binary.BigEndian.PutUint64(key[len(queuePrefix):], seq)

	return key
}

func seqOf(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(queuePrefix):])
}

func anchoredKey(operationID string) []byte {
	fp := fingerprintOf(operationID)

	return append(append(make([]byte, 0, len(anchoredPrefix)+len(fp)), anchoredPrefix...), fp[:]...)
}
