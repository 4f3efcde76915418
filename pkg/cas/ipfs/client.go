/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	apicas "github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/cas"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New("sidetree-gateway-cas-ipfs")

const (
	versionPath  = "/api/v0/version"
	blockPutPath = "/api/v0/block/put"
	blockGetPath = "/api/v0/block/get"

	defaultMaxContentSize = 10 * 1024 * 1024
)

// Client stores content as raw sha2-256 blocks on an IPFS node through its HTTP API.
type Client struct {
	endpoint       string
	httpClient     *http.Client
	maxContentSize int64
}

// Option is an IPFS client option.
type Option func(c *Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithMaxContentSize limits the size of content read from the node.
func WithMaxContentSize(size int64) Option {
	return func(c *Client) {
		c.maxContentSize = size
	}
}

// New returns a client for the IPFS node at the given endpoint (e.g. http://localhost:5001).
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:       strings.TrimSuffix(endpoint, "/"),
		httpClient:     &http.Client{},
		maxContentSize: defaultMaxContentSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type versionResponse struct {
	Version string `json:"Version"`
}

type errorResponse struct {
	Message string `json:"Message"`
}

// Ping checks that the node is reachable and returns its version.
func (c *Client) Ping(ctx context.Context) (string, error) {
	respBytes, err := c.post(ctx, versionPath, nil, "", "")
	if err != nil {
		return "", err
	}

	resp := &versionResponse{}
	if err := json.Unmarshal(respBytes, resp); err != nil {
		return "", errors.Wrap(err, "unmarshal version response")
	}

	logger.Info("Connected to IPFS node", log.WithURIString(c.endpoint), log.WithVersion(resp.Version))

	return resp.Version, nil
}

// Write stores the content as a raw block and returns its CIDv0 address.
func (c *Client) Write(ctx context.Context, content []byte) (string, error) {
	address, err := cas.ComputeAddress(content)
	if err != nil {
		return "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "data")
	if err != nil {
		return "", errors.Wrap(err, "create form file")
	}

	if _, err := part.Write(content); err != nil {
		return "", errors.Wrap(err, "write form file")
	}

	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart writer")
	}

	query := url.Values{}
	query.Set("cid-codec", "raw")
	query.Set("mhtype", "sha2-256")
	query.Set("pin", "true")

	if _, err := c.post(ctx, blockPutPath, query, writer.FormDataContentType(), "", body); err != nil {
		return "", err
	}

	logger.Debug("Wrote block", log.WithAddress(address), log.WithSize(len(content)))

	return address, nil
}

// Read returns the block stored at the given address.
func (c *Client) Read(ctx context.Context, address string) ([]byte, error) {
	if _, err := cas.ParseAddress(address); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("arg", address)

	return c.post(ctx, blockGetPath, query, "", address)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, contentType, address string,
	body ...io.Reader) ([]byte, error) {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if len(body) > 0 {
		reqBody = body[0]
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request %s", path)
	}

	defer func() {
		if e := resp.Body.Close(); e != nil {
			logger.Warn("Error closing response body", log.WithError(e))
		}
	}()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, c.maxContentSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read response of %s", path)
	}

	if int64(len(respBytes)) > c.maxContentSize {
		return nil, fmt.Errorf("response of %s exceeds maximum size %d", path, c.maxContentSize)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, toError(resp.StatusCode, respBytes, address)
	}

	return respBytes, nil
}

func toError(status int, body []byte, address string) error {
	errResp := &errorResponse{}
	if err := json.Unmarshal(body, errResp); err != nil || errResp.Message == "" {
		errResp.Message = string(body)
	}

	if address != "" && strings.Contains(strings.ToLower(errResp.Message), "not found") {
		return errors.Wrapf(apicas.ErrContentNotFound, "address %s", address)
	}

	return fmt.Errorf("IPFS node returned status %d: %s", status, errResp.Message)
}
