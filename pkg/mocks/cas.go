/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	apicas "github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/cas"
)

// MockCasClient mocks CAS for testing purposes.
type MockCasClient struct {
	mutex      sync.RWMutex
	m          map[string][]byte
	err        error
	readErrs   []error
	blockReads bool
	reads      int
	writes     int
}

// NewMockCasClient creates mock client.
func NewMockCasClient(err error) *MockCasClient {
	return &MockCasClient{m: make(map[string][]byte), err: err}
}

// Write writes the given content to CAS and returns its CIDv0 address.
func (m *MockCasClient) Write(ctx context.Context, content []byte) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.writes++

	if m.err != nil {
		return "", m.err
	}

	address, err := cas.ComputeAddress(content)
	if err != nil {
		return "", err
	}

	m.m[address] = content

	return address, nil
}

// Read reads the content of the given address in CAS.
func (m *MockCasClient) Read(ctx context.Context, address string) ([]byte, error) {
	m.mutex.Lock()
	m.reads++

	block := m.blockReads

	var err error
	if len(m.readErrs) > 0 {
		err, m.readErrs = m.readErrs[0], m.readErrs[1:]
	} else {
		err = m.err
	}

	value, ok := m.m[address]
	m.mutex.Unlock()

	if block {
		<-ctx.Done()

		return nil, ctx.Err()
	}

	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, errors.Wrapf(apicas.ErrContentNotFound, "address %s", address)
	}

	return value, nil
}

// Put stores content under an arbitrary address.
func (m *MockCasClient) Put(address string, content []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.m[address] = content
}

// Delete removes the content at the given address.
func (m *MockCasClient) Delete(address string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.m, address)
}

// SetError injects an error into the mock client.
func (m *MockCasClient) SetError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.err = err
}

// SetReadErrors queues errors returned by the next reads, one per read.
func (m *MockCasClient) SetReadErrors(errs ...error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.readErrs = errs
}

// SetBlockReads makes reads block until their context is done.
func (m *MockCasClient) SetBlockReads(block bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.blockReads = block
}

// ReadCount returns the number of reads.
func (m *MockCasClient) ReadCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.reads
}

// WriteCount returns the number of writes.
func (m *MockCasClient) WriteCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.writes
}
