/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package diddochandler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/dochandler"
)

// ResolvePath is the path of the resolve endpoint relative to the base path.
const ResolvePath = "/identifiers"

// ResolveHandler resolves DID documents.
type ResolveHandler struct {
	*handler
}

// NewResolveHandler returns a new DID document resolve handler.
func NewResolveHandler(basePath string, resolver dochandler.Resolver, timeout time.Duration) *ResolveHandler {
	return &ResolveHandler{
		handler: newHandler(
			fmt.Sprintf("%s%s/{id}", basePath, ResolvePath),
			http.MethodGet,
			dochandler.NewResolveHandler(resolver, timeout).Resolve,
		),
	}
}
