/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

// IANA registered JOSE headers (https://tools.ietf.org/html/rfc7515#section-4.1)
const (
	// HeaderAlgorithm identifies the cryptographic algorithm used to secure the JWS.
	HeaderAlgorithm = "alg"

	// HeaderKeyID is a hint indicating which key was used to secure the JWS.
	HeaderKeyID = "kid"

	// HeaderB64Payload determines whether the payload is represented in the JWS as base64url.
	HeaderB64Payload = "b64"
)

// Signature algorithms.
const (
	AlgorithmEdDSA  = "EdDSA"
	AlgorithmES256  = "ES256"
	AlgorithmES256K = "ES256K"
)

// Headers represents JOSE headers.
type Headers map[string]interface{}

// Algorithm gets the algorithm from JOSE headers.
func (h Headers) Algorithm() (string, bool) {
	return h.stringValue(HeaderAlgorithm)
}

// KeyID gets the key ID from JOSE headers.
func (h Headers) KeyID() (string, bool) {
	return h.stringValue(HeaderKeyID)
}

func (h Headers) stringValue(key string) (string, bool) {
	raw, ok := h[key]
	if !ok {
		return "", false
	}

	str, ok := raw.(string)

	return str, ok
}
