/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dochandler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
)

var logger = log.New("sidetree-gateway-restapi-dochandler")

// Resolver resolves documents.
type Resolver interface {
	ResolveDocument(ctx context.Context, shortOrLongFormDID string) (*document.ResolutionResult, error)
}

// ResolveHandler resolves generic documents.
type ResolveHandler struct {
	resolver Resolver
	timeout  time.Duration
}

// NewResolveHandler returns a new document resolve handler. Each resolution is bounded by the timeout.
func NewResolveHandler(resolver Resolver, timeout time.Duration) *ResolveHandler {
	return &ResolveHandler{
		resolver: resolver,
		timeout:  timeout,
	}
}

// Resolve resolves a document.
func (o *ResolveHandler) Resolve(rw http.ResponseWriter, req *http.Request) {
	id, err := url.PathUnescape(getID(req))
	if err != nil {
		common.WriteError(rw, http.StatusBadRequest, err)

		return
	}

	logger.Debug("Resolving DID document", log.WithID(id))

	ctx, cancel := context.WithTimeout(req.Context(), o.timeout)
	defer cancel()

	response, err := o.resolver.ResolveDocument(ctx, id)
	if err != nil {
		httpErr := common.ToHTTPError(err)

		if httpErr.Status() >= http.StatusInternalServerError {
			logger.Error("Failed to resolve DID document", log.WithID(id), log.WithError(err))
		}

		common.WriteError(rw, httpErr.Status(), httpErr)

		return
	}

	if response.IsDeactivated() {
		logger.Debug("Resolved deactivated DID document", log.WithID(id))

		common.WriteResponse(rw, http.StatusGone, response)

		return
	}

	common.WriteResponse(rw, http.StatusOK, response)
}

var getID = func(req *http.Request) string {
	return mux.Vars(req)["id"]
}
