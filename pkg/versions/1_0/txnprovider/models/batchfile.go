/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
)

//nolint:gochecknoglobals
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() { //nolint:gochecknoinits
	var err error

	// core deterministic encoding: the same operations always produce the same batch bytes
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("batch file encoder: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("batch file decoder: " + err.Error())
	}
}

// BatchFile defines the schema of the file written to CAS for one batch.
type BatchFile struct {
	// Operations are the canonical operation requests in batch order
	Operations [][]byte `cbor:"operations"`
}

// CreateBatchFile will combine the operation requests into a batch file.
func CreateBatchFile(ops []*operation.QueuedOperation) *BatchFile {
	requests := make([][]byte, 0, len(ops))

	for _, op := range ops {
		requests = append(requests, op.OperationRequest)
	}

	return &BatchFile{Operations: requests}
}

// Marshal returns the deterministic CBOR encoding of the batch file.
func (f *BatchFile) Marshal() ([]byte, error) {
	return encMode.Marshal(f)
}

// ParseBatchFile will parse batch file model from content.
func ParseBatchFile(content []byte) (*BatchFile, error) {
	file := &BatchFile{}

	if err := decMode.Unmarshal(content, file); err != nil {
		return nil, err
	}

	return file, nil
}
