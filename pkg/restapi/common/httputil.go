/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

// RetryAfter is the delay suggested to clients when a request failed with a transient error.
const RetryAfter = 5 * time.Second

// ErrorResponse is the body written for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteResponse writes a response to the response writer.
func WriteResponse(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/did+ld+json")
	rw.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(rw).Encode(v); err != nil {
		logger.Error("Unable to write response", log.WithError(err))
	}
}

// WriteError writes an error to the response writer.
func WriteError(rw http.ResponseWriter, status int, err error) {
	if status == http.StatusServiceUnavailable {
		rw.Header().Set("Retry-After", strconv.Itoa(int(RetryAfter.Seconds())))
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	if e := json.NewEncoder(rw).Encode(&ErrorResponse{Error: err.Error()}); e != nil {
		logger.Error("Unable to write response", log.WithError(e))
	}
}
