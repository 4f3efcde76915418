/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model

import (
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/patch"
)

// CreateRequest is a create operation as submitted and as stored in a batch file.
type CreateRequest struct {
	Operation  operation.Type   `json:"type,omitempty"`
	SuffixData *SuffixDataModel `json:"suffixData,omitempty"`
	Delta      *DeltaModel      `json:"delta,omitempty"`
}

// SuffixDataModel is hashed into the DID unique suffix.
type SuffixDataModel struct {
	// DeltaHash is the multihash of the canonical initial delta.
	DeltaHash string `json:"deltaHash,omitempty"`

	// RecoveryCommitment must be revealed by the first recover or deactivate.
	RecoveryCommitment string `json:"recoveryCommitment,omitempty"`
}

// DeltaModel carries the document patches and the commitment for the next update.
type DeltaModel struct {
	UpdateCommitment string        `json:"updateCommitment,omitempty"`
	Patches          []patch.Patch `json:"patches,omitempty"`
}

// LongFormInitialState is the state embedded in a long-form DID.
type LongFormInitialState struct {
	SuffixData *SuffixDataModel `json:"suffixData"`
	Delta      *DeltaModel      `json:"delta"`
}

// UpdateRequest updates the document with the patches in Delta. SignedData is a compact JWS over
// UpdateSignedDataModel.
type UpdateRequest struct {
	Operation   operation.Type `json:"type"`
	DidSuffix   string         `json:"didSuffix"`
	RevealValue string         `json:"revealValue"`
	SignedData  string         `json:"signedData"`
	Delta       *DeltaModel    `json:"delta"`
}

// DeactivateRequest permanently deactivates the document. SignedData is a compact JWS over
// DeactivateSignedDataModel.
type DeactivateRequest struct {
	Operation   operation.Type `json:"type"`
	DidSuffix   string         `json:"didSuffix"`
	RevealValue string         `json:"revealValue"`
	SignedData  string         `json:"signedData"`
}

// RecoverRequest replaces the document state and both commitments. SignedData is a compact JWS
// over RecoverSignedDataModel.
type RecoverRequest struct {
	Operation   operation.Type `json:"type"`
	DidSuffix   string         `json:"didSuffix"`
	RevealValue string         `json:"revealValue"`
	SignedData  string         `json:"signedData"`
	Delta       *DeltaModel    `json:"delta"`
}

// UpdateSignedDataModel is the JWS payload of an update.
type UpdateSignedDataModel struct {
	// UpdateKey hashes to the reveal value of the request.
	UpdateKey *jws.JWK `json:"updateKey"`
	DeltaHash string   `json:"deltaHash"`
}

// RecoverSignedDataModel is the JWS payload of a recovery.
type RecoverSignedDataModel struct {
	DeltaHash string `json:"deltaHash"`

	// RecoveryKey hashes to the reveal value of the request.
	RecoveryKey *jws.JWK `json:"recoveryKey"`

	// RecoveryCommitment replaces the current recovery commitment.
	RecoveryCommitment string `json:"recoveryCommitment"`
}

// DeactivateSignedDataModel is the JWS payload of a deactivation.
type DeactivateSignedDataModel struct {
	DidSuffix   string   `json:"didSuffix"`
	RecoveryKey *jws.JWK `json:"recoveryKey"`
}
