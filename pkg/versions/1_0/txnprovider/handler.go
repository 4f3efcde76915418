/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txnprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/txnprovider/models"
)

var logger = log.New("sidetree-gateway-txnprovider")

type compressionProvider interface {
	Compress(alg string, data []byte) ([]byte, error)
}

type metricsProvider interface {
	CASWriteSize(dataType string, size int)
}

// OperationHandler creates the batch file from batch operations and writes it to CAS.
type OperationHandler struct {
	cas      cas.Client
	protocol protocol.Protocol
	cp       compressionProvider
	metrics  metricsProvider
}

// NewOperationHandler returns new operations handler.
func NewOperationHandler(p protocol.Protocol, cas cas.Client, cp compressionProvider,
	metrics metricsProvider) *OperationHandler {
	return &OperationHandler{
		cas:      cas,
		protocol: p,
		cp:       cp,
		metrics:  metrics,
	}
}

// PrepareBatch serializes the operations, in the given order, to the batch file, writes the
// compressed batch file to CAS and returns its address.
func (h *OperationHandler) PrepareBatch(ctx context.Context, ops []*operation.QueuedOperation) (string, error) {
	if len(ops) == 0 {
		return "", errors.New("prepare batch called without operations, should not happen")
	}

	if len(ops) > int(h.protocol.MaxOperationCount) {
		return "", fmt.Errorf("number of operations[%d] exceeds maximum operation count[%d]",
			len(ops), h.protocol.MaxOperationCount)
	}

	batchFile := models.CreateBatchFile(ops)

	bytes, err := batchFile.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch file: %s", err.Error())
	}

	compressedBytes, err := h.cp.Compress(h.protocol.CompressionAlgorithm, bytes)
	if err != nil {
		return "", err
	}

	if len(compressedBytes) > int(h.protocol.MaxBatchFileSize) {
		return "", fmt.Errorf("batch file size[%d] exceeds maximum batch file size[%d]",
			len(compressedBytes), h.protocol.MaxBatchFileSize)
	}

	// make file available in CAS
	address, err := h.cas.Write(ctx, compressedBytes)
	if err != nil {
		return "", fmt.Errorf("failed to store batch file: %w", err)
	}

	logger.Debug("Wrote batch file", log.WithBatchHash(address), log.WithTotal(len(ops)),
		log.WithSize(len(compressedBytes)))

	h.metrics.CASWriteSize("batch", len(compressedBytes))

	return address, nil
}
