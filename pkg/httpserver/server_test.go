/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
)

func TestServer(t *testing.T) {
	metrics := &mockMetrics{}

	s := New("127.0.0.1:0", []common.HTTPHandler{
		&mockHandler{path: "/identifiers/{id}", method: http.MethodGet, handler: func(rw http.ResponseWriter, req *http.Request) {
			if mux.Vars(req)["id"] == "missing" {
				rw.WriteHeader(http.StatusNotFound)

				return
			}

			_, err := rw.Write([]byte(mux.Vars(req)["id"]))
			require.NoError(t, err)
		}},
	}, WithMetrics(metrics))

	require.Empty(t, s.Addr())
	require.NoError(t, s.Start())
	require.Error(t, s.Start())

	baseURL := "http://" + s.Addr()

	resp, err := http.Get(baseURL + "/identifiers/abc")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(baseURL + "/identifiers/missing")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(baseURL + "/unknown")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(baseURL+"/identifiers/abc", "application/json", nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	expected := []string{
		"GET /identifiers/{id} 200",
		"GET /identifiers/{id} 404",
		"GET unhandled 400",
		"POST unhandled 400",
	}

	// metrics are recorded after the response is written
	require.Eventually(t, func() bool { return len(metrics.get()) == len(expected) }, time.Second, 10*time.Millisecond)
	require.Equal(t, expected, metrics.get())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, s.Stop(ctx))

	select {
	case err := <-s.Done():
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_StopNotStarted(t *testing.T) {
	s := New("127.0.0.1:0", nil)
	require.NoError(t, s.Stop(context.Background()))
}

func TestServer_ListenError(t *testing.T) {
	s := New("invalid-address", nil)
	require.Error(t, s.Start())
}

type mockHandler struct {
	path    string
	method  string
	handler common.HTTPRequestHandler
}

func (h *mockHandler) Path() string                       { return h.path }
func (h *mockHandler) Method() string                     { return h.method }
func (h *mockHandler) Handler() common.HTTPRequestHandler { return h.handler }

type mockMetrics struct {
	mutex    sync.Mutex
	requests []string
}

func (m *mockMetrics) HTTPRequest(method, path string, status int, _ time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.requests = append(m.requests, method+" "+path+" "+strconv.Itoa(status))
}

func (m *mockMetrics) get() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]string(nil), m.requests...)
}
