/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protocolversion

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/factory"
)

var logger = log.New("sidetree-gateway-protocolversion")

// V1_0 is the version 1.0 identifier.
const V1_0 = "1.0"

// Metrics are the metrics used by the protocol version components.
type Metrics interface {
	CASWriteSize(dataType string, size int)
}

// Factory creates the components of one protocol version.
type Factory interface {
	Create(version string, p protocol.Protocol, casClient cas.Client, metrics factory.Metrics,
		opts ...factory.Option) (protocol.Version, error)
}

// Entry is one row of the versioning table.
type Entry struct {
	Version  string            `json:"version" yaml:"version"`
	Protocol protocol.Protocol `json:"protocol" yaml:"protocol"`
}

// Registry maps version identifiers to the factories that implement them.
type Registry struct {
	mutex     sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in versions registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	r.Register(V1_0, factory.New())

	return r
}

// Register registers a factory for a version, replacing any factory registered for it.
func (r *Registry) Register(version string, f Factory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.factories[version] = f
}

// CreateClient creates a protocol client from the versioning table.
func (r *Registry) CreateClient(entries []Entry, casClient cas.Client, metrics Metrics,
	opts ...factory.Option) (*Client, error) {
	var versions []protocol.Version

	for _, entry := range entries {
		f, err := r.get(entry.Version)
		if err != nil {
			return nil, err
		}

		pv, err := f.Create(entry.Version, entry.Protocol, casClient, metrics, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "create protocol version %s", entry.Version)
		}

		logger.Info("Created protocol version", log.WithVersion(entry.Version),
			log.WithAnchoredAt(entry.Protocol.StartingAnchorPoint))

		versions = append(versions, pv)
	}

	return NewClient(versions...)
}

func (r *Registry) get(version string) (Factory, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	f, ok := r.factories[version]
	if !ok {
		return nil, errors.Errorf("protocol version factory for version %s not found", version)
	}

	return f, nil
}
