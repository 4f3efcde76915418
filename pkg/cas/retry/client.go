/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"time"

	"github.com/pkg/errors"

	apicas "github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/cas"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-cas-retry")

const (
	defaultTimeout        = 10 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
	defaultBackoffFactor  = 2
)

// Client wraps a CAS client with a per-attempt timeout and bounded retries.
type Client struct {
	target         apicas.Client
	timeout        time.Duration
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	backoffFactor  float64
}

// Option is a retry client option.
type Option func(c *Client)

// WithTimeout sets the timeout of a single attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBackoff sets the exponential backoff between attempts.
func WithBackoff(initial, max time.Duration, factor float64) Option {
	return func(c *Client) {
		c.initialBackoff = initial
		c.maxBackoff = max
		c.backoffFactor = factor
	}
}

// New returns a retrying client around the given target.
func New(target apicas.Client, opts ...Option) *Client {
	c := &Client{
		target:         target,
		timeout:        defaultTimeout,
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		backoffFactor:  defaultBackoffFactor,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Write writes the content, retrying transient failures.
func (c *Client) Write(ctx context.Context, content []byte) (string, error) {
	var address string

	err := c.do(ctx, "write", func(attemptCtx context.Context) error {
		var e error

		address, e = c.target.Write(attemptCtx, content)

		return e
	})
	if err != nil {
		return "", err
	}

	return address, nil
}

// Read reads the content at the address, retrying transient failures. Content that doesn't
// hash to its address is rejected.
func (c *Client) Read(ctx context.Context, address string) ([]byte, error) {
	var content []byte

	err := c.do(ctx, "read", func(attemptCtx context.Context) error {
		var e error

		content, e = c.target.Read(attemptCtx, address)

		return e
	})
	if err != nil {
		return nil, err
	}

	if err := cas.VerifyContent(address, content); err != nil {
		return nil, err
	}

	return content, nil
}

func (c *Client) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := c.initialBackoff

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying CAS operation", log.WithMethod(op), log.WithAttempt(attempt),
				log.WithBackoff(backoff), log.WithError(lastErr))

			if err := sleep(ctx, backoff); err != nil {
				return errors.Wrapf(apicas.ErrTimeout, "%s cancelled after %d attempts: %s", op, attempt, lastErr)
			}

			backoff = c.nextBackoff(backoff)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		lastErr = fn(attemptCtx)
		cancel()

		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if ctx.Err() != nil {
			break
		}
	}

	logger.Warn("CAS operation failed", log.WithMethod(op), log.WithTimeout(c.timeout), log.WithError(lastErr))

	return errors.Wrapf(apicas.ErrTimeout, "%s failed: %s", op, lastErr)
}

func (c *Client) nextBackoff(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * c.backoffFactor)
	if next > c.maxBackoff {
		return c.maxBackoff
	}

	return next
}

func isRetryable(err error) bool {
	return !errors.Is(err, apicas.ErrContentNotFound) &&
		!errors.Is(err, apicas.ErrInvalidAddress) &&
		!errors.Is(err, apicas.ErrContentMismatch)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
