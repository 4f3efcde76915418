/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txnprocessor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/txn"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-observer")

// OperationStore records operations observed in anchored batches.
type OperationStore interface {
	MarkAnchored(operationIDs ...string) error
}

// ResolutionCache drops cached resolution models.
type ResolutionCache interface {
	Invalidate(suffixes ...string)
}

// Providers contains the providers required by the TxnProcessor.
type Providers struct {
	OpStore                   OperationStore
	Cache                     ResolutionCache
	OperationProtocolProvider protocol.OperationProvider
}

// TxnProcessor processes anchors by recording their operations as anchored.
type TxnProcessor struct {
	*Providers
}

// New returns a new anchor processor.
func New(providers *Providers) *TxnProcessor {
	return &TxnProcessor{
		Providers: providers,
	}
}

// Process marks all of the operations in the anchored batch as anchored and invalidates the
// resolution models of the suffixes they touch. It returns the number of operations in the batch.
func (p *TxnProcessor) Process(ctx context.Context, anchor *txn.AnchorReference) (int, error) {
	logger.Debug("Processing anchor", log.WithAnchoredAt(anchor.AnchoredAt), log.WithBatchHash(anchor.BatchHash))

	ops, err := p.OperationProtocolProvider.GetOperations(ctx, anchor)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve operations for anchor[%d]: %w", anchor.AnchoredAt, err)
	}

	ids := make([]string, 0, len(ops))

	var suffixes []string

	batchSuffixes := make(map[string]bool)

	for _, op := range ops {
		ids = append(ids, op.OperationID)

		if !batchSuffixes[op.UniqueSuffix] {
			batchSuffixes[op.UniqueSuffix] = true

			suffixes = append(suffixes, op.UniqueSuffix)
		}
	}

	if err := p.OpStore.MarkAnchored(ids...); err != nil {
		return 0, errors.Wrapf(err, "failed to mark operations from anchor[%d] as anchored", anchor.AnchoredAt)
	}

	p.Cache.Invalidate(suffixes...)

	logger.Debug("Processed anchor", log.WithAnchoredAt(anchor.AnchoredAt), log.WithTotal(len(ops)),
		log.WithSuffixes(suffixes...))

	return len(ops), nil
}
