/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package diddochandler

import (
	"net/http"

	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/dochandler"
)

// OperationsPath is the path of the operations endpoint relative to the base path.
const OperationsPath = "/operations"

// UpdateHandler handles the creation and update of DID documents.
type UpdateHandler struct {
	*dochandler.UpdateHandler
	basePath string
}

// NewUpdateHandler returns a new DID document update handler.
func NewUpdateHandler(basePath string, processor dochandler.Processor, maxSize int64) *UpdateHandler {
	return &UpdateHandler{
		UpdateHandler: dochandler.NewUpdateHandler(processor, maxSize),
		basePath:      basePath,
	}
}

// Path returns the context path.
func (h *UpdateHandler) Path() string {
	return h.basePath + OperationsPath
}

// Method returns the HTTP method.
func (h *UpdateHandler) Method() string {
	return http.MethodPost
}

// Handler returns the handler.
func (h *UpdateHandler) Handler() common.HTTPRequestHandler {
	return h.Update
}
