/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package encoder

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// EncodeToString encodes the bytes to an unpadded base64url string.
func EncodeToString(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeString decodes an unpadded base64url string.
func DecodeString(encodedContent string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(encodedContent)
}

// EncodeJSON marshals the value to JSON and encodes the result to base64url.
func EncodeJSON(value interface{}) (string, error) {
	bytes, err := json.Marshal(value)
	if err != nil {
		return "", errors.Wrap(err, "marshal json")
	}

	return EncodeToString(bytes), nil
}

// DecodeJSON decodes base64url content and unmarshals the resulting JSON into value.
func DecodeJSON(encodedContent string, value interface{}) error {
	bytes, err := DecodeString(encodedContent)
	if err != nil {
		return errors.Wrap(err, "decode base64url")
	}

	if err := json.Unmarshal(bytes, value); err != nil {
		return errors.Wrap(err, "unmarshal json")
	}

	return nil
}
