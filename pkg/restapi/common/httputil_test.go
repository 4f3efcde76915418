/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteResponse(t *testing.T) {
	rw := httptest.NewRecorder()
	WriteResponse(rw, http.StatusOK, "content")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, "\"content\"\n", rw.Body.String())
	require.Equal(t, "application/did+ld+json", rw.Header().Get("Content-Type"))

	rw = httptest.NewRecorder()
	WriteResponse(rw, http.StatusAccepted, nil)
	require.Equal(t, http.StatusAccepted, rw.Code)
	require.Empty(t, rw.Body.String())
}

func TestWriteError(t *testing.T) {
	rw := httptest.NewRecorder()

	e := errors.New("some error")
	WriteError(rw, http.StatusBadRequest, e)
	require.Equal(t, http.StatusBadRequest, rw.Code)
	require.Empty(t, rw.Header().Get("Retry-After"))

	require.JSONEq(t, `{"error":"some error"}`, rw.Body.String())

	rw = httptest.NewRecorder()
	WriteError(rw, http.StatusServiceUnavailable, e)
	require.Equal(t, http.StatusServiceUnavailable, rw.Code)
	require.Equal(t, "5", rw.Header().Get("Retry-After"))
}
