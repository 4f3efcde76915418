/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package compression

import (
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/compression/gzip"
)

// Option is a registry instance option.
type Option func(opts *Registry)

// Registry contains compression algorithms.
type Registry struct {
	algorithms []Algorithm
}

// Algorithm defines compression/decompression algorithm functionality.
type Algorithm interface {
	Compress(value []byte) ([]byte, error)
	Decompress(value []byte) ([]byte, error)
	Accept(alg string) bool
	Close() error
}

// New return new instance of compression algorithm registry.
func New(opts ...Option) *Registry {
	registry := &Registry{}

	for _, opt := range opts {
		opt(registry)
	}

	return registry
}

// Compress data using specified algorithm.
func (r *Registry) Compress(alg string, data []byte) ([]byte, error) {
	algorithm, err := r.resolveAlgorithm(alg)
	if err != nil {
		return nil, err
	}

	result, err := algorithm.Compress(data)
	if err != nil {
		return nil, errors.Wrapf(err, "compression failed for algorithm[%s]", alg)
	}

	return result, nil
}

// Decompress will decompress compressed data using specified algorithm.
func (r *Registry) Decompress(alg string, data []byte) ([]byte, error) {
	algorithm, err := r.resolveAlgorithm(alg)
	if err != nil {
		return nil, err
	}

	result, err := algorithm.Decompress(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decompression failed for alg[%s]", alg)
	}

	return result, nil
}

// Close frees resources being maintained by compression algorithm.
func (r *Registry) Close() error {
	for _, v := range r.algorithms {
		if err := v.Close(); err != nil {
			return errors.Wrap(err, "close algorithm")
		}
	}

	return nil
}

func (r *Registry) resolveAlgorithm(alg string) (Algorithm, error) {
	for _, v := range r.algorithms {
		if v.Accept(alg) {
			return v, nil
		}
	}

	return nil, errors.Errorf("compression algorithm '%s' not supported", alg)
}

// WithAlgorithm adds compression algorithm to the list of available algorithms.
func WithAlgorithm(alg Algorithm) Option {
	return func(opts *Registry) {
		opts.algorithms = append(opts.algorithms, alg)
	}
}

// WithDefaultAlgorithms adds default compression algorithms to the list of available algorithms.
// maxDecompressedSize bounds the output of decompression; zero means unbounded.
func WithDefaultAlgorithms(maxDecompressedSize uint) Option {
	return func(opts *Registry) {
		opts.algorithms = append(opts.algorithms, gzip.New(gzip.WithMaxDecompressedSize(maxDecompressedSize)))
	}
}
