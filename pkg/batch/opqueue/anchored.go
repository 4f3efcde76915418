/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package opqueue

import (
	"github.com/zeebo/blake3"
)

// fingerprint identifies an anchored operation ID in a fixed amount of space.
type fingerprint [32]byte

func fingerprintOf(operationID string) fingerprint {
	return blake3.Sum256([]byte(operationID))
}
