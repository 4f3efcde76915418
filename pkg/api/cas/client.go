/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cas

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrContentNotFound is returned when the address is unknown to the store. It is definitive and never retried.
	ErrContentNotFound = errors.New("content not found")

	// ErrTimeout is returned when the store could not be reached within the allowed time, after retries.
	ErrTimeout = errors.New("content addressable storage timeout")

	// ErrInvalidAddress is returned when an address cannot be parsed.
	ErrInvalidAddress = errors.New("invalid content address")

	// ErrContentMismatch is returned when content read back does not hash to its address.
	ErrContentMismatch = errors.New("content doesn't match address")
)

// Client defines interface for accessing the underlying content addressable storage.
type Client interface {
	// Write writes the given content to CAS and returns its address. Identical content
	// always produces the identical address.
	Write(ctx context.Context, content []byte) (string, error)

	// Read returns the content stored at the given address.
	Read(ctx context.Context, address string) ([]byte, error)
}
