/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"errors"
	"net/http"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/dochandler"
	"github.com/trustbloc/sidetree-gateway-go/pkg/processor"
)

// HTTPError holds an error and an HTTP status code.
type HTTPError struct {
	err    error
	status int
}

// NewHTTPError returns a new HTTPError.
func NewHTTPError(status int, err error) *HTTPError {
	return &HTTPError{
		err:    err,
		status: status,
	}
}

// Error returns the error string.
func (e *HTTPError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *HTTPError) Unwrap() error {
	return e.err
}

// Status returns the status code.
func (e *HTTPError) Status() int {
	return e.status
}

// ToHTTPError maps errors returned by the document handler to HTTP errors.
func ToHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, operation.ErrValidation), errors.Is(err, dochandler.ErrRejected):
		return NewHTTPError(http.StatusBadRequest, err)
	case errors.Is(err, processor.ErrDocumentNotFound):
		return NewHTTPError(http.StatusNotFound, err)
	case errors.Is(err, processor.ErrRetryable), errors.Is(err, cas.ErrTimeout):
		return NewHTTPError(http.StatusServiceUnavailable, err)
	default:
		return NewHTTPError(http.StatusInternalServerError, err)
	}
}
