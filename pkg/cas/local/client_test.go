/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package local

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	apicas "github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/cas"
)

func TestClient_WriteRead(t *testing.T) {
	c := NewInMemory()
	defer func() { require.NoError(t, c.Close()) }()

	content := []byte("batch content")

	address, err := c.Write(context.Background(), content)
	require.NoError(t, err)

	expected, err := cas.ComputeAddress(content)
	require.NoError(t, err)
	require.Equal(t, expected, address)

	read, err := c.Read(context.Background(), address)
	require.NoError(t, err)
	require.Equal(t, content, read)

	again, err := c.Write(context.Background(), content)
	require.NoError(t, err)
	require.Equal(t, address, again)
}

func TestClient_Read(t *testing.T) {
	c := NewInMemory()
	defer func() { require.NoError(t, c.Close()) }()

	t.Run("error - not found", func(t *testing.T) {
		address, err := cas.ComputeAddress([]byte("never written"))
		require.NoError(t, err)

		_, err = c.Read(context.Background(), address)
		require.True(t, errors.Is(err, apicas.ErrContentNotFound))
	})

	t.Run("error - invalid address", func(t *testing.T) {
		_, err := c.Read(context.Background(), "")
		require.True(t, errors.Is(err, apicas.ErrInvalidAddress))
	})

	t.Run("error - context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.Read(ctx, "QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4")
		require.True(t, errors.Is(err, context.Canceled))

		_, err = c.Write(ctx, []byte("content"))
		require.True(t, errors.Is(err, context.Canceled))
	})
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cas")

	c, err := Open(path)
	require.NoError(t, err)

	address, err := c.Write(context.Background(), []byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)

	defer func() { require.NoError(t, c.Close()) }()

	content, err := c.Read(context.Background(), address)
	require.NoError(t, err)
	require.Equal(t, []byte("persisted"), content)
}
