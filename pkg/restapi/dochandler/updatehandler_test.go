/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dochandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/dochandler"
	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
	"github.com/trustbloc/sidetree-gateway-go/pkg/mocks"
	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
)

const (
	namespace = "did:sidetree"
	maxSize   = 1000
)

func TestUpdateHandler_Update(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		request := []byte(`{"type":"create"}`)
		result := &document.ResolutionResult{Document: document.Document{"id": namespace + ":abc"}}

		docHandler := mocks.NewMockDocumentHandler().WithNamespace(namespace).WithResult(string(request), result)
		handler := NewUpdateHandler(docHandler, maxSize)

		rw := httptest.NewRecorder()
		handler.Update(rw, httptest.NewRequest(http.MethodPost, "/operations", bytes.NewReader(request)))

		require.Equal(t, http.StatusAccepted, rw.Code)
		require.Equal(t, "application/did+ld+json", rw.Header().Get("Content-Type"))
		require.Equal(t, [][]byte{request}, docHandler.Processed())

		var response document.ResolutionResult
		require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &response))
		require.Equal(t, namespace+":abc", response.Document.ID())
	})

	t.Run("update", func(t *testing.T) {
		docHandler := mocks.NewMockDocumentHandler().WithNamespace(namespace)
		handler := NewUpdateHandler(docHandler, maxSize)

		rw := httptest.NewRecorder()
		handler.Update(rw, httptest.NewRequest(http.MethodPost, "/operations", strings.NewReader(`{"type":"update"}`)))

		require.Equal(t, http.StatusAccepted, rw.Code)
		require.Empty(t, rw.Body.String())
	})

	t.Run("request too large", func(t *testing.T) {
		docHandler := mocks.NewMockDocumentHandler().WithNamespace(namespace)
		handler := NewUpdateHandler(docHandler, maxSize)

		rw := httptest.NewRecorder()
		handler.Update(rw, httptest.NewRequest(http.MethodPost, "/operations",
			strings.NewReader(strings.Repeat("a", maxSize+1))))

		require.Equal(t, http.StatusBadRequest, rw.Code)
		require.Empty(t, docHandler.Processed())
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
		}{
			{fmt.Errorf("%w: missing delta", operation.ErrValidation), http.StatusBadRequest},
			{fmt.Errorf("%w: duplicate operation", dochandler.ErrRejected), http.StatusBadRequest},
			{errors.New("queue error"), http.StatusInternalServerError},
		}

		for _, tc := range tests {
			docHandler := mocks.NewMockDocumentHandler().WithNamespace(namespace).WithError(tc.err)
			handler := NewUpdateHandler(docHandler, maxSize)

			rw := httptest.NewRecorder()
			handler.Update(rw, httptest.NewRequest(http.MethodPost, "/operations", strings.NewReader("{}")))

			require.Equal(t, tc.status, rw.Code)

			var response common.ErrorResponse
			require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &response))
			require.Equal(t, tc.err.Error(), response.Error)
		}
	})
}
