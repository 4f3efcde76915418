/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txnprovider

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/txn"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/txnprovider/models"
)

const defaultCacheSize = 100

type decompressionProvider interface {
	Decompress(alg string, data []byte) ([]byte, error)
}

// OperationParser parses operations read from anchored batches.
type OperationParser interface {
	ParseOperation(namespace string, operationRequest []byte, batch bool) (*model.Operation, error)
}

// OperationProvider is an operation provider.
type OperationProvider struct {
	protocol.Protocol
	parser OperationParser
	cas    cas.Client
	dp     decompressionProvider
	cache  *lru.Cache
}

// Opt is an operation provider option.
type Opt func(opts *options)

type options struct {
	cacheSize int
}

// WithCacheSize sets the number of decoded batch files kept in memory. Batch files are
// immutable so cached entries never go stale.
func WithCacheSize(size int) Opt {
	return func(opts *options) {
		opts.cacheSize = size
	}
}

// NewOperationProvider returns a new operation provider.
func NewOperationProvider(p protocol.Protocol, parser OperationParser, cas cas.Client,
	dp decompressionProvider, opts ...Opt) (*OperationProvider, error) {
	o := &options{cacheSize: defaultCacheSize}

	for _, opt := range opts {
		opt(o)
	}

	cache, err := lru.New(o.cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create batch file cache")
	}

	return &OperationProvider{
		Protocol: p,
		parser:   parser,
		cas:      cas,
		dp:       dp,
		cache:    cache,
	}, nil
}

// GetOperations reads the batch referenced by the anchor and returns its operations in batch order.
// CAS errors are returned wrapped so that cas.ErrContentNotFound and cas.ErrTimeout can be
// detected; a batch that cannot be decoded or violates protocol limits returns txn.ErrInvalidBatch.
func (h *OperationProvider) GetOperations(ctx context.Context,
	anchor *txn.AnchorReference) ([]*operation.AnchoredOperation, error) {
	logger.Debug("Reading batch", log.WithBatchHash(anchor.BatchHash), log.WithAnchoredAt(anchor.AnchoredAt))

	batchFile, err := h.getBatchFile(ctx, anchor.BatchHash)
	if err != nil {
		return nil, err
	}

	if len(batchFile.Operations) > int(h.MaxOperationCount) {
		return nil, errors.Wrapf(txn.ErrInvalidBatch, "batch[%s]: number of operations[%d] exceeds maximum[%d]",
			anchor.BatchHash, len(batchFile.Operations), h.MaxOperationCount)
	}

	suffixes := make(map[string]struct{}, len(batchFile.Operations))

	var ops []*operation.AnchoredOperation

	for i, request := range batchFile.Operations {
		// namespace is irrelevant in this case
		op, err := h.parser.ParseOperation("", request, true)
		if err != nil {
			logger.Warn("Skipping invalid operation in anchored batch",
				log.WithBatchHash(anchor.BatchHash), log.WithAnchoredAt(anchor.AnchoredAt),
				log.WithTotal(i), log.WithError(err))

			continue
		}

		if _, ok := suffixes[op.UniqueSuffix]; ok {
			return nil, errors.Wrapf(txn.ErrInvalidBatch, "batch[%s]: duplicate suffix[%s]",
				anchor.BatchHash, op.UniqueSuffix)
		}

		suffixes[op.UniqueSuffix] = struct{}{}

		operationID, err := hashing.CalculateMultihash(h.HashAlgorithm(), op.OperationRequest)
		if err != nil {
			return nil, errors.Wrap(err, "calculate operation ID")
		}

		ops = append(ops, &operation.AnchoredOperation{
			Type:             op.Type,
			UniqueSuffix:     op.UniqueSuffix,
			OperationID:      operationID,
			OperationRequest: op.OperationRequest,
			AnchoredAt:       anchor.AnchoredAt,
			BatchHash:        anchor.BatchHash,
			OperationIndex:   uint(i),
			ProtocolVersion:  anchor.ProtocolVersion,
		})
	}

	return ops, nil
}

func (h *OperationProvider) getBatchFile(ctx context.Context, address string) (*models.BatchFile, error) {
	if cached, ok := h.cache.Get(address); ok {
		return cached.(*models.BatchFile), nil //nolint:forcetypeassert
	}

	content, err := h.readFromCAS(ctx, address)
	if err != nil {
		return nil, err
	}

	batchFile, err := models.ParseBatchFile(content)
	if err != nil {
		return nil, errors.Wrapf(txn.ErrInvalidBatch, "batch[%s]: parse batch file: %s", address, err)
	}

	h.cache.Add(address, batchFile)

	return batchFile, nil
}

func (h *OperationProvider) readFromCAS(ctx context.Context, address string) ([]byte, error) {
	bytes, err := h.cas.Read(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("retrieve CAS content at address[%s]: %w", address, err)
	}

	if len(bytes) > int(h.MaxBatchFileSize) {
		return nil, errors.Wrapf(txn.ErrInvalidBatch, "address[%s]: content size %d exceeded maximum size %d",
			address, len(bytes), h.MaxBatchFileSize)
	}

	content, err := h.dp.Decompress(h.CompressionAlgorithm, bytes)
	if err != nil {
		return nil, errors.Wrapf(txn.ErrInvalidBatch, "decompress CAS address[%s] using '%s': %s",
			address, h.CompressionAlgorithm, err)
	}

	return content, nil
}
