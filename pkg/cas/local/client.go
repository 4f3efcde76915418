/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package local

import (
	"context"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	apicas "github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/cas"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-cas-local")

var keyPrefix = []byte("cas/")

// Client is a content addressable store kept in a local LevelDB database.
type Client struct {
	db *leveldb.DB
}

// Open opens (or creates) the store at the given path.
func Open(path string) (*Client, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open local CAS at %s", path)
	}

	logger.Info("Opened local CAS", log.WithPath(path))

	return &Client{db: db}, nil
}

// NewInMemory returns a store that keeps its content in memory.
func NewInMemory() *Client {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		// opening memory storage only fails on programming errors
		panic(err)
	}

	return &Client{db: db}
}

// Write stores the content and returns its address.
func (c *Client) Write(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	address, err := cas.ComputeAddress(content)
	if err != nil {
		return "", err
	}

	if err := c.db.Put(key(address), content, nil); err != nil {
		return "", errors.Wrap(err, "put content")
	}

	logger.Debug("Wrote content", log.WithAddress(address), log.WithSize(len(content)))

	return address, nil
}

// Read returns the content at the given address.
func (c *Client) Read(ctx context.Context, address string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := cas.ParseAddress(address); err != nil {
		return nil, err
	}

	content, err := c.db.Get(key(address), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, errors.Wrapf(apicas.ErrContentNotFound, "address %s", address)
		}

		return nil, errors.Wrap(err, "get content")
	}

	return content, nil
}

// Close closes the underlying database.
func (c *Client) Close() error {
	return c.db.Close()
}

func key(address string) []byte {
	return append(append([]byte{}, keyPrefix...), address...)
}
