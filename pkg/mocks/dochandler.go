/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
)

// NewMockDocumentHandler returns a new mock document handler.
func NewMockDocumentHandler() *MockDocumentHandler {
	return &MockDocumentHandler{
		client:  NewMockProtocolClient(),
		results: make(map[string]*document.ResolutionResult),
	}
}

// MockDocumentHandler mocks the document handler.
type MockDocumentHandler struct {
	mutex     sync.Mutex
	err       error
	namespace string
	client    protocol.Client
	results   map[string]*document.ResolutionResult
	processed [][]byte
}

// WithNamespace sets the namespace.
func (m *MockDocumentHandler) WithNamespace(ns string) *MockDocumentHandler {
	m.namespace = ns

	return m
}

// WithError injects an error into the mock handler.
func (m *MockDocumentHandler) WithError(err error) *MockDocumentHandler {
	m.err = err

	return m
}

// WithResult sets the result returned for the DID. The result is also returned when an operation
// is processed for the DID.
func (m *MockDocumentHandler) WithResult(did string, result *document.ResolutionResult) *MockDocumentHandler {
	m.results[did] = result

	return m
}

// Namespace returns the namespace.
func (m *MockDocumentHandler) Namespace() string {
	return m.namespace
}

// Protocol returns the Protocol.
func (m *MockDocumentHandler) Protocol() protocol.Client {
	return m.client
}

// ProcessOperation records the operation request. The result set for the request body is returned, if any.
func (m *MockDocumentHandler) ProcessOperation(_ context.Context, operationBuffer []byte) (*document.ResolutionResult, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	m.processed = append(m.processed, operationBuffer)

	return m.results[string(operationBuffer)], nil
}

// ResolveDocument returns the result set for the DID.
func (m *MockDocumentHandler) ResolveDocument(_ context.Context, did string) (*document.ResolutionResult, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	result, ok := m.results[did]
	if !ok {
		return nil, errors.Errorf("no result for %s", did)
	}

	return result, nil
}

// Processed returns the processed operation requests.
func (m *MockDocumentHandler) Processed() [][]byte {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([][]byte(nil), m.processed...)
}
