/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package diddochandler

import (
	"net/http"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
)

// VersionPath is the path of the version endpoint relative to the base path.
const VersionPath = "/version"

// VersionResponse describes the protocol version currently in effect.
type VersionResponse struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	EffectiveFrom uint64 `json:"effectiveFrom"`
}

// VersionHandler returns the current protocol version.
type VersionHandler struct {
	*handler

	name string
	pc   protocol.Client
}

// NewVersionHandler returns a new version handler.
func NewVersionHandler(basePath, name string, pc protocol.Client) *VersionHandler {
	h := &VersionHandler{
		name: name,
		pc:   pc,
	}

	h.handler = newHandler(basePath+VersionPath, http.MethodGet, h.version)

	return h
}

func (h *VersionHandler) version(rw http.ResponseWriter, _ *http.Request) {
	pv, err := h.pc.Current()
	if err != nil {
		common.WriteError(rw, http.StatusInternalServerError, err)

		return
	}

	common.WriteResponse(rw, http.StatusOK, &VersionResponse{
		Name:          h.name,
		Version:       pv.Version(),
		EffectiveFrom: pv.Protocol().StartingAnchorPoint,
	})
}
