/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package canonicalizer

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// MarshalCanonical marshals the value into canonical JSON: object members sorted by key,
// no insignificant whitespace and no HTML escaping. Numbers keep their original representation.
// A []byte value is treated as JSON content.
func MarshalCanonical(value interface{}) ([]byte, error) {
	valueBytes, ok := value.([]byte)

	if !ok {
		var err error

		valueBytes, err = json.Marshal(value)
		if err != nil {
			return nil, err
		}
	}

	return transform(valueBytes)
}

func transform(content []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	var generic interface{}

	if err := decoder.Decode(&generic); err != nil {
		return nil, errors.Wrap(err, "parse json")
	}

	if decoder.More() {
		return nil, errors.New("parse json: unexpected content after top-level value")
	}

	buf := &bytes.Buffer{}

	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)

	// Maps are marshalled with sorted keys.
	if err := encoder.Encode(generic); err != nil {
		return nil, errors.Wrap(err, "marshal json")
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
