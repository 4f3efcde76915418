/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package diddochandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/batch"
	"github.com/trustbloc/sidetree-gateway-go/pkg/batch/opqueue"
	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
	"github.com/trustbloc/sidetree-gateway-go/pkg/dochandler"
	"github.com/trustbloc/sidetree-gateway-go/pkg/httpserver"
	"github.com/trustbloc/sidetree-gateway-go/pkg/ledger"
	"github.com/trustbloc/sidetree-gateway-go/pkg/mocks"
	"github.com/trustbloc/sidetree-gateway-go/pkg/opstore"
	"github.com/trustbloc/sidetree-gateway-go/pkg/patch"
	"github.com/trustbloc/sidetree-gateway-go/pkg/processor"
	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/factory"
)

const namespace = "did:sidetree"

func TestRESTAPI(t *testing.T) {
	env := newRESTEnv(t)

	did, err := mocks.NewDID(mocks.DefaultDocument)
	require.NoError(t, err)

	shortForm := namespace + ":" + did.Suffix

	longForm, err := did.LongForm(namespace)
	require.NoError(t, err)

	t.Run("unknown path", func(t *testing.T) {
		status, _ := env.get(t, "/unknown")
		require.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("version", func(t *testing.T) {
		status, body := env.get(t, basePath+VersionPath)
		require.Equal(t, http.StatusOK, status)

		var response VersionResponse
		require.NoError(t, json.Unmarshal(body, &response))
		require.Equal(t, "1.0", response.Version)
	})

	t.Run("invalid operation", func(t *testing.T) {
		status, body := env.post(t, []byte(`{"type":"create"}`))
		require.Equal(t, http.StatusBadRequest, status)

		var response common.ErrorResponse
		require.NoError(t, json.Unmarshal(body, &response))
		require.NotEmpty(t, response.Error)
	})

	t.Run("create", func(t *testing.T) {
		status, body := env.post(t, did.CreateRequest)
		require.Equal(t, http.StatusAccepted, status)

		result := unmarshalResult(t, body)
		require.Equal(t, shortForm, result.Document.ID())
	})

	t.Run("duplicate create", func(t *testing.T) {
		status, body := env.post(t, did.CreateRequest)
		require.Equal(t, http.StatusBadRequest, status)
		require.Contains(t, string(body), opstore.ReasonDuplicate)
	})

	t.Run("resolve before anchoring", func(t *testing.T) {
		status, _ := env.get(t, basePath+ResolvePath+"/"+shortForm)
		require.Equal(t, http.StatusNotFound, status)

		status, body := env.get(t, basePath+ResolvePath+"/"+longForm)
		require.Equal(t, http.StatusOK, status)
		require.False(t, isPublished(t, unmarshalResult(t, body)))
	})

	env.cut(t)

	t.Run("resolve after anchoring", func(t *testing.T) {
		status, body := env.get(t, basePath+ResolvePath+"/"+shortForm)
		require.Equal(t, http.StatusOK, status)

		result := unmarshalResult(t, body)
		require.Equal(t, shortForm, result.Document.ID())
		require.True(t, isPublished(t, result))

		status, body = env.get(t, basePath+ResolvePath+"/"+longForm)
		require.Equal(t, http.StatusOK, status)
		require.True(t, isPublished(t, unmarshalResult(t, body)))
	})

	t.Run("update", func(t *testing.T) {
		p, err := patch.NewAddServiceEndpointsPatch(
			`[{"id":"svc1","type":"LinkedDomains","serviceEndpoint":"https://example.com"}]`)
		require.NoError(t, err)

		request, err := did.Update(p)
		require.NoError(t, err)

		status, _ := env.post(t, request)
		require.Equal(t, http.StatusAccepted, status)

		env.cut(t)

		status, body := env.get(t, basePath+ResolvePath+"/"+shortForm)
		require.Equal(t, http.StatusOK, status)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &raw))

		doc, ok := raw["didDocument"].(map[string]interface{})
		require.True(t, ok)

		services, ok := doc[document.ServiceProperty].([]interface{})
		require.True(t, ok)
		require.Len(t, services, 1)
	})

	t.Run("deactivate", func(t *testing.T) {
		request, err := did.Deactivate()
		require.NoError(t, err)

		status, _ := env.post(t, request)
		require.Equal(t, http.StatusAccepted, status)

		env.cut(t)

		status, _ = env.get(t, basePath+ResolvePath+"/"+shortForm)
		require.Equal(t, http.StatusGone, status)
	})
}

type restEnv struct {
	pc     *mocks.MockProtocolClient
	store  *opstore.Store
	ledger *ledger.Ledger
	writer *batch.Writer
	server *httpserver.Server
}

func newRESTEnv(t *testing.T) *restEnv {
	t.Helper()

	pv, err := factory.New().Create("1.0", mocks.GetDefaultProtocolParameters(), mocks.NewMockCasClient(nil),
		&mocks.MetricsProvider{})
	require.NoError(t, err)

	store, err := opstore.New(&opqueue.MemQueue{})
	require.NoError(t, err)

	env := &restEnv{
		pc:     mocks.NewMockProtocolClient(pv),
		store:  store,
		ledger: ledger.New(),
	}

	env.writer, err = batch.New(namespace, env)
	require.NoError(t, err)

	p, err := processor.New(namespace, env.ledger, env.pc)
	require.NoError(t, err)

	docHandler := dochandler.New(namespace, env.pc, store, env.writer, p)

	env.server = httpserver.New("127.0.0.1:0", []common.HTTPHandler{
		NewUpdateHandler(basePath, docHandler, 1<<20),
		NewResolveHandler(basePath, docHandler, 5*time.Second),
		NewVersionHandler(basePath, "sidetree-gateway", env.pc),
	})

	require.NoError(t, env.server.Start())

	t.Cleanup(func() {
		require.NoError(t, env.server.Stop(context.Background()))
		require.NoError(t, env.ledger.Close())
	})

	return env
}

func (e *restEnv) Protocol() protocol.Client {
	return e.pc
}

func (e *restEnv) Anchor() batch.AnchorWriter {
	return e.ledger
}

func (e *restEnv) OperationStore() batch.OperationStore {
	return e.store
}

// cut anchors the pending operations. The writer loop is not started so batches are cut only here.
func (e *restEnv) cut(t *testing.T) {
	t.Helper()

	result, err := e.writer.Cut(context.Background())
	require.NoError(t, err)
	require.False(t, result.NoOp)
}

func (e *restEnv) url(path string) string {
	return fmt.Sprintf("http://%s%s", e.server.Addr(), path)
}

func (e *restEnv) get(t *testing.T, path string) (int, []byte) {
	t.Helper()

	resp, err := http.Get(e.url(path)) //nolint:gosec,noctx
	require.NoError(t, err)

	return readResponse(t, resp)
}

func (e *restEnv) post(t *testing.T, request []byte) (int, []byte) {
	t.Helper()

	resp, err := http.Post(e.url(basePath+OperationsPath), "application/json", //nolint:gosec,noctx
		bytes.NewReader(request))
	require.NoError(t, err)

	return readResponse(t, resp)
}

func readResponse(t *testing.T, resp *http.Response) (int, []byte) {
	t.Helper()

	defer func() {
		require.NoError(t, resp.Body.Close())
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}

func unmarshalResult(t *testing.T, body []byte) *document.ResolutionResult {
	t.Helper()

	var result document.ResolutionResult
	require.NoError(t, json.Unmarshal(body, &result))

	return &result
}

func isPublished(t *testing.T, result *document.ResolutionResult) bool {
	t.Helper()

	method, ok := result.DocumentMetadata[document.MethodProperty].(map[string]interface{})
	require.True(t, ok)

	published, ok := method[document.PublishedProperty].(bool)
	require.True(t, ok)

	return published
}
