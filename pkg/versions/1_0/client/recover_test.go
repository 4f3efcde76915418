/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/commitment"
	internal "github.com/trustbloc/sidetree-gateway-go/pkg/internal/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/patch"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

func TestNewRecoverRequest(t *testing.T) {
	s, recoveryKey := newSigner(t)
	_, nextRecoveryCommitment := newKey(t)
	_, nextUpdateCommitment := newKey(t)

	newInfo := func() *RecoverRequestInfo {
		return &RecoverRequestInfo{
			DidSuffix:          didSuffix,
			RecoveryKey:        recoveryKey,
			OpaqueDocument:     opaqueDoc,
			RecoveryCommitment: nextRecoveryCommitment,
			UpdateCommitment:   nextUpdateCommitment,
			MultihashCode:      sha2_256,
			Signer:             s,
		}
	}

	t.Run("missing unique suffix", func(t *testing.T) {
		info := newInfo()
		info.DidSuffix = ""

		request, err := NewRecoverRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), "missing did unique suffix")
	})
	t.Run("missing opaque document", func(t *testing.T) {
		info := newInfo()
		info.OpaqueDocument = ""

		request, err := NewRecoverRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), "either opaque document or patches have to be supplied")
	})
	t.Run("both opaque document and patches", func(t *testing.T) {
		info := newInfo()
		info.Patches = []patch.Patch{{}}

		request, err := NewRecoverRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), "cannot provide both opaque document and patches")
	})
	t.Run("missing recovery key", func(t *testing.T) {
		info := newInfo()
		info.RecoveryKey = nil

		request, err := NewRecoverRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), "missing recovery key")
	})
	t.Run("missing signer algorithm", func(t *testing.T) {
		info := newInfo()
		mockSigner := NewMockSigner(nil)
		mockSigner.headers = map[string]interface{}{}
		info.Signer = mockSigner

		request, err := NewRecoverRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), "algorithm must be present in the protected header")
	})
	t.Run("re-using recovery key for next commitment", func(t *testing.T) {
		info := newInfo()

		c, err := commitment.GetCommitment(recoveryKey, sha2_256)
		require.NoError(t, err)

		info.RecoveryCommitment = c

		request, err := NewRecoverRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), "re-using public keys for commitment is not allowed")
	})
	t.Run("signing error", func(t *testing.T) {
		info := newInfo()
		info.Signer = NewMockSigner(errors.New(signerErr))

		request, err := NewRecoverRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), signerErr)
	})
	t.Run("success", func(t *testing.T) {
		request, err := NewRecoverRequest(newInfo())
		require.NoError(t, err)

		var schema model.RecoverRequest
		require.NoError(t, json.Unmarshal(request, &schema))
		require.Equal(t, operation.TypeRecover, schema.Operation)
		require.NoError(t, commitment.VerifyKey(recoveryKey, schema.RevealValue))

		sig, err := internal.VerifyJWS(schema.SignedData, recoveryKey)
		require.NoError(t, err)

		var signedData model.RecoverSignedDataModel
		require.NoError(t, json.Unmarshal(sig.Payload, &signedData))
		require.Equal(t, nextRecoveryCommitment, signedData.RecoveryCommitment)
	})
}

func TestNewDeactivateRequest(t *testing.T) {
	s, recoveryKey := newSigner(t)

	newInfo := func() *DeactivateRequestInfo {
		return &DeactivateRequestInfo{
			DidSuffix:     didSuffix,
			RecoveryKey:   recoveryKey,
			MultihashCode: sha2_256,
			Signer:        s,
		}
	}

	t.Run("missing unique suffix", func(t *testing.T) {
		info := newInfo()
		info.DidSuffix = ""

		request, err := NewDeactivateRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), "missing did unique suffix")
	})
	t.Run("missing signer", func(t *testing.T) {
		info := newInfo()
		info.Signer = nil

		request, err := NewDeactivateRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), "missing signer")
	})
	t.Run("signing error", func(t *testing.T) {
		info := newInfo()
		info.Signer = NewMockSigner(errors.New(signerErr))

		request, err := NewDeactivateRequest(info)
		require.Error(t, err)
		require.Empty(t, request)
		require.Contains(t, err.Error(), signerErr)
	})
	t.Run("success", func(t *testing.T) {
		request, err := NewDeactivateRequest(newInfo())
		require.NoError(t, err)

		var schema model.DeactivateRequest
		require.NoError(t, json.Unmarshal(request, &schema))
		require.Equal(t, operation.TypeDeactivate, schema.Operation)

		sig, err := internal.VerifyJWS(schema.SignedData, recoveryKey)
		require.NoError(t, err)

		var signedData model.DeactivateSignedDataModel
		require.NoError(t, json.Unmarshal(sig.Payload, &signedData))
		require.Equal(t, didSuffix, signedData.DidSuffix)
	})
}
