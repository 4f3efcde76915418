/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
)

// DefaultNS is default namespace used in mocks.
const DefaultNS = "did:sidetree"

const (
	sha2_256 = 18

	maxBatchFileSize    = 20000
	maxOperationSize    = 2000
	maxOperationHashLen = 100
	maxDeltaSize        = 1000
	maxOperationCount   = 2
)

// GetDefaultProtocolParameters returns mock protocol parameters.
func GetDefaultProtocolParameters() protocol.Protocol {
	return protocol.Protocol{
		StartingAnchorPoint:    0,
		MultihashAlgorithms:    []uint{sha2_256},
		MaxOperationCount:      maxOperationCount,
		MaxOperationSize:       maxOperationSize,
		MaxOperationHashLength: maxOperationHashLen,
		MaxDeltaSize:           maxDeltaSize,
		MaxBatchFileSize:       maxBatchFileSize,
		CompressionAlgorithm:   "GZIP",
		Patches: []string{
			"replace", "add-public-keys", "remove-public-keys",
			"add-services", "remove-services", "ietf-json-patch",
		},
		SignatureAlgorithms: []string{"EdDSA", "ES256", "ES256K"},
		KeyAlgorithms:       []string{"Ed25519", "P-256", "secp256k1"},
	}
}

// MockProtocolVersion holds the components of a protocol version.
type MockProtocolVersion struct {
	VersionStr  string
	P           protocol.Protocol
	Parser      protocol.OperationParser
	Applier     protocol.OperationApplier
	Handler     protocol.OperationHandler
	Provider    protocol.OperationProvider
	Composer    protocol.DocumentComposer
	Transformer protocol.DocumentTransformer
}

// Version returns the version string.
func (m *MockProtocolVersion) Version() string {
	return m.VersionStr
}

// Protocol returns the protocol parameters.
func (m *MockProtocolVersion) Protocol() protocol.Protocol {
	return m.P
}

// OperationParser returns the operation parser.
func (m *MockProtocolVersion) OperationParser() protocol.OperationParser {
	return m.Parser
}

// OperationApplier returns the operation applier.
func (m *MockProtocolVersion) OperationApplier() protocol.OperationApplier {
	return m.Applier
}

// OperationHandler returns the operation handler.
func (m *MockProtocolVersion) OperationHandler() protocol.OperationHandler {
	return m.Handler
}

// OperationProvider returns the operation provider.
func (m *MockProtocolVersion) OperationProvider() protocol.OperationProvider {
	return m.Provider
}

// DocumentComposer returns the document composer.
func (m *MockProtocolVersion) DocumentComposer() protocol.DocumentComposer {
	return m.Composer
}

// DocumentTransformer returns the document transformer.
func (m *MockProtocolVersion) DocumentTransformer() protocol.DocumentTransformer {
	return m.Transformer
}

// MockProtocolClient mocks protocol client for testing purposes.
type MockProtocolClient struct {
	Versions []protocol.Version
	Err      error
}

// NewMockProtocolClient creates a mock protocol client for the given versions.
func NewMockProtocolClient(versions ...protocol.Version) *MockProtocolClient {
	sorted := append([]protocol.Version(nil), versions...)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Protocol().StartingAnchorPoint < sorted[j].Protocol().StartingAnchorPoint
	})

	return &MockProtocolClient{Versions: sorted}
}

// Current returns the latest version.
func (m *MockProtocolClient) Current() (protocol.Version, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	if len(m.Versions) == 0 {
		return nil, errors.New("protocol parameters are not defined")
	}

	return m.Versions[len(m.Versions)-1], nil
}

// Get returns the version active at the given anchor point.
func (m *MockProtocolClient) Get(anchoredAt uint64) (protocol.Version, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	for i := len(m.Versions) - 1; i >= 0; i-- {
		if anchoredAt >= m.Versions[i].Protocol().StartingAnchorPoint {
			return m.Versions[i], nil
		}
	}

	return nil, errors.Errorf("protocol parameters are not defined for anchor point %d", anchoredAt)
}
