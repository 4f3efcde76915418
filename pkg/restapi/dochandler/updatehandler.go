/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dochandler

import (
	"context"
	"io"
	"net/http"

	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
)

// Processor processes document operations.
type Processor interface {
	ProcessOperation(ctx context.Context, operationBuffer []byte) (*document.ResolutionResult, error)
}

// UpdateHandler handles the creation and update of documents.
type UpdateHandler struct {
	processor Processor
	maxSize   int64
}

// NewUpdateHandler returns a new document update handler. Request bodies larger than maxSize are rejected.
func NewUpdateHandler(processor Processor, maxSize int64) *UpdateHandler {
	return &UpdateHandler{
		processor: processor,
		maxSize:   maxSize,
	}
}

// Update creates or updates a document.
func (h *UpdateHandler) Update(rw http.ResponseWriter, req *http.Request) {
	request, err := io.ReadAll(http.MaxBytesReader(rw, req.Body, h.maxSize))
	if err != nil {
		common.WriteError(rw, http.StatusBadRequest, err)

		return
	}

	response, err := h.processor.ProcessOperation(req.Context(), request)
	if err != nil {
		httpErr := common.ToHTTPError(err)

		if httpErr.Status() >= http.StatusInternalServerError {
			logger.Error("Failed to process operation", log.WithError(err))
		} else {
			logger.Debug("Operation rejected", log.WithStatus(httpErr.Status()), log.WithError(err))
		}

		common.WriteError(rw, httpErr.Status(), httpErr)

		return
	}

	// the create result is returned as is; other operations have no body
	common.WriteResponse(rw, http.StatusAccepted, response)
}
