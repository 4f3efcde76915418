/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package factory

import (
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/compression"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/doccomposer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/doctransformer/didtransformer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/operationapplier"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/operationparser"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/txnprovider"
)

// CBOR framing of the batch file: the map and array headers plus one byte string header per operation.
const (
	batchFileHeaderSize = 32
	operationHeaderSize = 9
)

// Metrics records the sizes of content written to CAS.
type Metrics interface {
	CASWriteSize(dataType string, size int)
}

// Factory creates the components of protocol version 1.0.
type Factory struct{}

// New returns a version 1.0 factory.
func New() *Factory {
	return &Factory{}
}

// Option is a version option.
type Option func(opts *options)

type options struct {
	methodContext              []string
	includeBase                bool
	includePublishedOperations bool
	batchCacheSize             int
}

// WithMethodContext adds method contexts to resolved DID documents.
func WithMethodContext(ctx []string) Option {
	return func(opts *options) {
		opts.methodContext = ctx
	}
}

// WithBase adds the @base context to resolved DID documents.
func WithBase(enabled bool) Option {
	return func(opts *options) {
		opts.includeBase = enabled
	}
}

// WithIncludePublishedOperations adds the applied operations to the document metadata.
func WithIncludePublishedOperations(enabled bool) Option {
	return func(opts *options) {
		opts.includePublishedOperations = enabled
	}
}

// WithBatchCacheSize sets the number of decoded batch files kept in memory.
func WithBatchCacheSize(size int) Option {
	return func(opts *options) {
		opts.batchCacheSize = size
	}
}

// Create returns a protocol version that implements the given protocol parameters.
func (f *Factory) Create(version string, p protocol.Protocol, casClient cas.Client,
	metrics Metrics, opts ...Option) (protocol.Version, error) {
	o := &options{}

	for _, opt := range opts {
		opt(o)
	}

	if err := validate(p); err != nil {
		return nil, errors.Wrapf(err, "protocol version %s", version)
	}

	cp := compression.New(compression.WithDefaultAlgorithms(maxDecompressedSize(p)))

	parser := operationparser.New(p)
	composer := doccomposer.New()

	var providerOpts []txnprovider.Opt
	if o.batchCacheSize > 0 {
		providerOpts = append(providerOpts, txnprovider.WithCacheSize(o.batchCacheSize))
	}

	provider, err := txnprovider.NewOperationProvider(p, parser, casClient, cp, providerOpts...)
	if err != nil {
		return nil, err
	}

	return &vrsn{
		version:  version,
		protocol: p,
		parser:   parser,
		applier:  operationapplier.New(p, parser, composer),
		handler:  txnprovider.NewOperationHandler(p, casClient, cp, metrics),
		provider: provider,
		composer: composer,
		transformer: didtransformer.New(
			didtransformer.WithMethodContext(o.methodContext),
			didtransformer.WithBase(o.includeBase),
			didtransformer.WithIncludePublishedOperations(o.includePublishedOperations),
		),
	}, nil
}

func validate(p protocol.Protocol) error {
	if len(p.MultihashAlgorithms) == 0 {
		return errors.New("at least one multihash algorithm is required")
	}

	if p.MaxOperationCount == 0 {
		return errors.New("max operation count must be greater than zero")
	}

	if p.MaxOperationSize == 0 {
		return errors.New("max operation size must be greater than zero")
	}

	if p.MaxBatchFileSize == 0 {
		return errors.New("max batch file size must be greater than zero")
	}

	if p.CompressionAlgorithm == "" {
		return errors.New("compression algorithm is required")
	}

	return nil
}

// maxDecompressedSize is the largest batch file a valid batch can decompress to.
func maxDecompressedSize(p protocol.Protocol) uint {
	return batchFileHeaderSize + p.MaxOperationCount*(p.MaxOperationSize+operationHeaderSize)
}

type vrsn struct {
	version     string
	protocol    protocol.Protocol
	parser      protocol.OperationParser
	applier     protocol.OperationApplier
	handler     protocol.OperationHandler
	provider    protocol.OperationProvider
	composer    protocol.DocumentComposer
	transformer protocol.DocumentTransformer
}

func (v *vrsn) Version() string {
	return v.version
}

func (v *vrsn) Protocol() protocol.Protocol {
	return v.protocol
}

func (v *vrsn) OperationParser() protocol.OperationParser {
	return v.parser
}

func (v *vrsn) OperationApplier() protocol.OperationApplier {
	return v.applier
}

func (v *vrsn) OperationHandler() protocol.OperationHandler {
	return v.handler
}

func (v *vrsn) OperationProvider() protocol.OperationProvider {
	return v.provider
}

func (v *vrsn) DocumentComposer() protocol.DocumentComposer {
	return v.composer
}

func (v *vrsn) DocumentTransformer() protocol.DocumentTransformer {
	return v.transformer
}
