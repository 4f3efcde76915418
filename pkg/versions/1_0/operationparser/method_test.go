/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/commitment"
	"github.com/trustbloc/sidetree-gateway-go/pkg/encoder"
	"github.com/trustbloc/sidetree-gateway-go/pkg/mocks"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/client"
)

func TestParseDID(t *testing.T) {
	p := New(mocks.GetDefaultProtocolParameters())

	_, recoveryKey := newEd25519Key(t)
	_, updateKey := newEd25519Key(t)

	recoveryCommitment, err := commitment.GetCommitment(recoveryKey, sha2_256)
	require.NoError(t, err)

	updateCommitment, err := commitment.GetCommitment(updateKey, sha2_256)
	require.NoError(t, err)

	info := &client.CreateRequestInfo{
		OpaqueDocument:     opaqueDoc,
		RecoveryCommitment: recoveryCommitment,
		UpdateCommitment:   updateCommitment,
		MultihashCode:      sha2_256,
	}

	longFormDID, err := client.NewLongFormDID(namespace, info)
	require.NoError(t, err)

	createRequest, err := client.NewCreateRequest(info)
	require.NoError(t, err)

	suffix, err := client.GetUniqueSuffix(createRequest, sha2_256)
	require.NoError(t, err)

	t.Run("short form", func(t *testing.T) {
		uniqueSuffix, create, err := p.ParseDID(namespace, namespace+":abc")
		require.NoError(t, err)
		require.Equal(t, "abc", uniqueSuffix)
		require.Nil(t, create)
	})
	t.Run("long form", func(t *testing.T) {
		uniqueSuffix, create, err := p.ParseDID(namespace, longFormDID)
		require.NoError(t, err)
		require.Equal(t, suffix, uniqueSuffix)
		require.Equal(t, createRequest, create)

		op, err := p.Parse(namespace, create)
		require.NoError(t, err)
		require.Equal(t, suffix, op.UniqueSuffix)
	})
	t.Run("error - suffix doesn't match initial state", func(t *testing.T) {
		_, initialState, err := splitLongForm(longFormDID)
		require.NoError(t, err)

		uniqueSuffix, create, err := p.ParseDID(namespace, namespace+":other:"+initialState)
		require.Error(t, err)
		require.True(t, errors.Is(err, operation.ErrValidation))
		require.Empty(t, uniqueSuffix)
		require.Nil(t, create)
		require.Contains(t, err.Error(), "unique suffix doesn't match initial state")
	})
	t.Run("error - initial state is missing delta", func(t *testing.T) {
		initialState := encoder.EncodeToString([]byte(`{"suffixData":{}}`))

		_, _, err := p.ParseDID(namespace, namespace+":abc:"+initialState)
		require.Error(t, err)
		require.Contains(t, err.Error(), "initial state must contain suffix data and delta")
	})
	t.Run("error - initial state is not base64url", func(t *testing.T) {
		_, _, err := p.ParseDID(namespace, namespace+":abc:!!!")
		require.Error(t, err)
		require.True(t, errors.Is(err, operation.ErrValidation))
		require.Contains(t, err.Error(), "long form did")
	})
	t.Run("error - wrong namespace", func(t *testing.T) {
		_, _, err := p.ParseDID(namespace, "did:other:abc")
		require.Error(t, err)
		require.True(t, errors.Is(err, operation.ErrValidation))
		require.Contains(t, err.Error(), "did must start with configured namespace[did:sidetree]")
	})
	t.Run("error - missing suffix", func(t *testing.T) {
		_, _, err := p.ParseDID(namespace, namespace+":")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid did")
	})
	t.Run("error - too many parts", func(t *testing.T) {
		_, _, err := p.ParseDID(namespace, namespace+":a:b:c")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid did")
	})
}

func splitLongForm(did string) (string, string, error) {
	i := strings.LastIndex(did, ":")
	if i < 0 {
		return "", "", errors.New("not a long form did")
	}

	return did[:i], did[i+1:], nil
}
