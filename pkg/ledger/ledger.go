/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/txn"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-ledger")

var anchorPrefix = []byte("a/")

// ErrClosed is returned when the ledger has been closed.
var ErrClosed = errors.New("ledger is closed")

// Ledger is an ordered log of anchors. Every anchor is assigned the next sequence number,
// starting at 1.
type Ledger struct {
	mutex       sync.RWMutex
	anchors     []*txn.AnchorReference
	db          *leveldb.DB
	subscribers []chan struct{}
	closed      bool
}

// New returns a ledger kept in memory.
func New() *Ledger {
	return &Ledger{}
}

// Open opens (or creates) a ledger persisted at the given path.
func Open(path string) (*Ledger, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger at %s", path)
	}

	l := &Ledger{db: db}

	iter := db.NewIterator(util.BytesPrefix(anchorPrefix), nil)
	defer iter.Release()

	for iter.Next() {
		anchor := &txn.AnchorReference{}
		if err := json.Unmarshal(iter.Value(), anchor); err != nil {
			return nil, errors.Wrap(err, "unmarshal anchor")
		}

		l.anchors = append(l.anchors, anchor)
	}

	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "restore ledger")
	}

	logger.Info("Opened ledger", log.WithPath(path), log.WithAnchoredAt(l.latest()))

	return l, nil
}

// WriteAnchor appends the batch hash to the log and returns its anchor reference.
func (l *Ledger) WriteAnchor(ctx context.Context, batchHash string, protocolVersion uint64) (*txn.AnchorReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mutex.Lock()

	if l.closed {
		l.mutex.Unlock()

		return nil, ErrClosed
	}

	anchor := &txn.AnchorReference{
		BatchHash:       batchHash,
		AnchoredAt:      l.latest() + 1,
		ProtocolVersion: protocolVersion,
	}

	if l.db != nil {
		value, err := json.Marshal(anchor)
		if err != nil {
			l.mutex.Unlock()

			return nil, errors.Wrap(err, "marshal anchor")
		}

		if err := l.db.Put(key(anchor.AnchoredAt), value, nil); err != nil {
			l.mutex.Unlock()

			return nil, errors.Wrap(err, "store anchor")
		}
	}

	l.anchors = append(l.anchors, anchor)

	for _, s := range l.subscribers {
		select {
		case s <- struct{}{}:
		default:
			// a notification is already pending
		}
	}

	l.mutex.Unlock()

	logger.Debug("Wrote anchor", log.WithBatchHash(batchHash), log.WithAnchoredAt(anchor.AnchoredAt))

	result := *anchor

	return &result, nil
}

// Read returns the anchors after the given sequence number in ascending order.
func (l *Ledger) Read(sinceAnchoredAt uint64) ([]*txn.AnchorReference, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if l.closed {
		return nil, ErrClosed
	}

	i := sort.Search(len(l.anchors), func(i int) bool {
		return l.anchors[i].AnchoredAt > sinceAnchoredAt
	})

	result := make([]*txn.AnchorReference, 0, len(l.anchors)-i)
	for _, a := range l.anchors[i:] {
		anchor := *a
		result = append(result, &anchor)
	}

	return result, nil
}

// Latest returns the sequence number of the last anchor, or zero if there is none.
func (l *Ledger) Latest() uint64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.latest()
}

// RegisterForAnchors returns a channel that is signalled when new anchors are written.
// Notifications are coalesced: the subscriber reads the log to find out what is new.
func (l *Ledger) RegisterForAnchors() <-chan struct{} {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	ch := make(chan struct{}, 1)

	if l.closed {
		close(ch)

		return ch
	}

	l.subscribers = append(l.subscribers, ch)

	return ch
}

// Close closes subscriber channels and the underlying database.
func (l *Ledger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true

	for _, s := range l.subscribers {
		close(s)
	}

	l.subscribers = nil

	if l.db != nil {
		return l.db.Close()
	}

	return nil
}

func (l *Ledger) latest() uint64 {
	if len(l.anchors) == 0 {
		return 0
	}

	return l.anchors[len(l.anchors)-1].AnchoredAt
}

func key(anchoredAt uint64) []byte {
	k := make([]byte, len(anchorPrefix)+8)
	copy(k, anchorPrefix)
	binary.BigEndian.PutUint64(k[len(anchorPrefix):], anchoredAt)

	return k
}
