/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/commitment"
	"github.com/trustbloc/sidetree-gateway-go/pkg/mocks"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

func TestParseDeactivateOperation(t *testing.T) {
	p := New(mocks.GetDefaultProtocolParameters())
	f := newFixture(t)

	t.Run("success", func(t *testing.T) {
		op, err := p.ParseDeactivateOperation(f.newDeactivate(t), false)
		require.NoError(t, err)
		require.Equal(t, operation.TypeDeactivate, op.Type)
		require.Equal(t, f.suffix, op.UniqueSuffix)
		require.Nil(t, op.Delta)
	})
	t.Run("error - signed did suffix mismatch", func(t *testing.T) {
		rv, err := commitment.GetRevealValue(f.recoveryKey, sha2_256)
		require.NoError(t, err)

		request := marshal(t, &model.DeactivateRequest{
			Operation:   operation.TypeDeactivate,
			DidSuffix:   f.suffix,
			RevealValue: rv,
			SignedData: signModel(t, nil, &model.DeactivateSignedDataModel{
				DidSuffix:   "other",
				RecoveryKey: f.recoveryKey,
			}, f.recoverySigner),
		})

		op, err := p.ParseDeactivateOperation(request, false)
		require.Error(t, err)
		require.Nil(t, op)
		require.Contains(t, err.Error(), "signed did suffix mismatch for deactivate")
	})
	t.Run("error - signed with update key", func(t *testing.T) {
		rv, err := commitment.GetRevealValue(f.recoveryKey, sha2_256)
		require.NoError(t, err)

		request := marshal(t, &model.DeactivateRequest{
			Operation:   operation.TypeDeactivate,
			DidSuffix:   f.suffix,
			RevealValue: rv,
			SignedData: signModel(t, nil, &model.DeactivateSignedDataModel{
				DidSuffix:   f.suffix,
				RecoveryKey: f.recoveryKey,
			}, f.updateSigner),
		})

		op, err := p.ParseDeactivateOperation(request, false)
		require.Error(t, err)
		require.Nil(t, op)
		require.Contains(t, err.Error(), "validate signed data for deactivate")
	})
	t.Run("error - missing signing key", func(t *testing.T) {
		rv, err := commitment.GetRevealValue(f.recoveryKey, sha2_256)
		require.NoError(t, err)

		request := marshal(t, &model.DeactivateRequest{
			Operation:   operation.TypeDeactivate,
			DidSuffix:   f.suffix,
			RevealValue: rv,
			SignedData: signModel(t, nil, &model.DeactivateSignedDataModel{
				DidSuffix: f.suffix,
			}, f.recoverySigner),
		})

		op, err := p.ParseDeactivateOperation(request, false)
		require.Error(t, err)
		require.Nil(t, op)
		require.Contains(t, err.Error(), "missing signing key")
	})
}
