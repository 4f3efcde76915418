/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gzip

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const algName = "GZIP"

// Algorithm implements gzip compression/decompression.
type Algorithm struct {
	maxDecompressedSize int64
}

// Option is a gzip algorithm option.
type Option func(a *Algorithm)

// WithMaxDecompressedSize limits the size of decompressed content. Zero means no limit.
func WithMaxDecompressedSize(size uint) Option {
	return func(a *Algorithm) {
		a.maxDecompressedSize = int64(size)
	}
}

// New creates new gzip algorithm instance.
func New(opts ...Option) *Algorithm {
	a := &Algorithm{}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Compress will compress data using gzip.
func (a *Algorithm) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, errors.Wrap(err, "failed to write data")
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close writer")
	}

	return buf.Bytes(), nil
}

// Decompress will decompress compressed data.
func (a *Algorithm) Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create new reader")
	}

	var reader io.Reader = zr
	if a.maxDecompressedSize > 0 {
		reader = io.LimitReader(zr, a.maxDecompressedSize+1)
	}

	zrBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read compressed data")
	}

	if a.maxDecompressedSize > 0 && int64(len(zrBytes)) > a.maxDecompressedSize {
		return nil, errors.Errorf("decompressed content exceeds maximum size %d", a.maxDecompressedSize)
	}

	if err := zr.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close reader")
	}

	return zrBytes, nil
}

// Accept algorithm.
func (a *Algorithm) Accept(alg string) bool {
	return alg == algName
}

// Close closes open resources.
func (a *Algorithm) Close() error {
	return nil
}
