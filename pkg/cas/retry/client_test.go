/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apicas "github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/mocks"
)

func newTestClient(target apicas.Client) *Client {
	return New(target,
		WithTimeout(50*time.Millisecond),
		WithMaxRetries(2),
		WithBackoff(time.Millisecond, 4*time.Millisecond, 2),
	)
}

func TestClient_WriteRead(t *testing.T) {
	c := New(mocks.NewMockCasClient(nil))

	address, err := c.Write(context.Background(), []byte("content"))
	require.NoError(t, err)

	content, err := c.Read(context.Background(), address)
	require.NoError(t, err)
	require.Equal(t, []byte("content"), content)
}

func TestClient_Read(t *testing.T) {
	t.Run("success after transient failures", func(t *testing.T) {
		casClient := mocks.NewMockCasClient(nil)
		c := newTestClient(casClient)

		address, err := c.Write(context.Background(), []byte("content"))
		require.NoError(t, err)

		casClient.SetReadErrors(errors.New("connection reset"), errors.New("connection reset"))

		content, err := c.Read(context.Background(), address)
		require.NoError(t, err)
		require.Equal(t, []byte("content"), content)
		require.Equal(t, 3, casClient.ReadCount())
	})

	t.Run("error - retries exhausted", func(t *testing.T) {
		casClient := mocks.NewMockCasClient(errors.New("connection refused"))
		c := newTestClient(casClient)

		_, err := c.Read(context.Background(), "QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4")
		require.True(t, errors.Is(err, apicas.ErrTimeout))
		require.Contains(t, err.Error(), "connection refused")
		require.Equal(t, 3, casClient.ReadCount())
	})

	t.Run("error - attempt timeout", func(t *testing.T) {
		casClient := mocks.NewMockCasClient(nil)
		casClient.SetBlockReads(true)

		c := newTestClient(casClient)

		_, err := c.Read(context.Background(), "QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4")
		require.True(t, errors.Is(err, apicas.ErrTimeout))
		require.Equal(t, 3, casClient.ReadCount())
	})

	t.Run("error - not found is not retried", func(t *testing.T) {
		casClient := mocks.NewMockCasClient(nil)
		c := newTestClient(casClient)

		_, err := c.Read(context.Background(), "QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4")
		require.True(t, errors.Is(err, apicas.ErrContentNotFound))
		require.Equal(t, 1, casClient.ReadCount())
	})

	t.Run("error - content mismatch", func(t *testing.T) {
		casClient := mocks.NewMockCasClient(nil)
		casClient.Put("QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4", []byte("not hello world"))

		c := newTestClient(casClient)

		_, err := c.Read(context.Background(), "QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4")
		require.True(t, errors.Is(err, apicas.ErrContentMismatch))
	})

	t.Run("error - caller context cancelled", func(t *testing.T) {
		casClient := mocks.NewMockCasClient(errors.New("connection refused"))
		c := New(casClient, WithBackoff(time.Hour, time.Hour, 2))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := c.Read(ctx, "QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4")
		require.True(t, errors.Is(err, apicas.ErrTimeout))
		require.Equal(t, 1, casClient.ReadCount())
	})
}

func TestClient_Write(t *testing.T) {
	casClient := mocks.NewMockCasClient(errors.New("unavailable"))
	c := newTestClient(casClient)

	_, err := c.Write(context.Background(), []byte("content"))
	require.True(t, errors.Is(err, apicas.ErrTimeout))
	require.Equal(t, 3, casClient.WriteCount())

	casClient.SetError(nil)

	_, err = c.Write(context.Background(), []byte("content"))
	require.NoError(t, err)
}

func TestNextBackoff(t *testing.T) {
	c := New(nil)

	require.Equal(t, 400*time.Millisecond, c.nextBackoff(200*time.Millisecond))
	require.Equal(t, 2*time.Second, c.nextBackoff(1500*time.Millisecond))
}
