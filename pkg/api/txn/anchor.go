/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import "github.com/pkg/errors"

// ErrInvalidBatch is returned when an anchored batch cannot be decoded or violates protocol limits.
// Such a batch is permanently unusable and is skipped.
var ErrInvalidBatch = errors.New("invalid batch")

// AnchorReference is the record of one batch on the anchoring medium.
type AnchorReference struct {
	// BatchHash is the CAS address of the batch file.
	BatchHash string `json:"batchHash"`

	// AnchoredAt is the monotonically increasing sequence number assigned by the anchoring medium.
	AnchoredAt uint64 `json:"anchoredAt"`

	// ProtocolVersion is the starting anchor point of the protocol version the batch was written with.
	ProtocolVersion uint64 `json:"protocolVersion"`
}
