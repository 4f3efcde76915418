/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/square/go-jose/v3/json"

	"github.com/trustbloc/sidetree-gateway-go/pkg/encoder"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
)

const (
	jwsPartsCount    = 3
	jwsHeaderPart    = 0
	jwsPayloadPart   = 1
	jwsSignaturePart = 2
)

// JSONWebSignature is a parsed JWS in compact serialization (https://tools.ietf.org/html/rfc7515#section-7.1).
type JSONWebSignature struct {
	ProtectedHeaders jws.Headers
	Payload          []byte

	signingInput []byte
	signature    []byte
}

// Signer signs data and provides the JWS headers relevant to the signer.
type Signer interface {
	// Sign signs.
	Sign(data []byte) ([]byte, error)

	// Headers provides JWS headers. "alg" header must be provided.
	Headers() jws.Headers
}

// SignCompact signs the payload and returns the JWS compact serialization. Signer headers
// are overridden by the given protected headers.
func SignCompact(protectedHeaders jws.Headers, payload []byte, signer Signer) (string, error) {
	headers := make(jws.Headers)

	for k, v := range signer.Headers() {
		headers[k] = v
	}

	for k, v := range protectedHeaders {
		headers[k] = v
	}

	if err := checkJWSHeaders(headers); err != nil {
		return "", errors.Wrap(err, "check JOSE headers")
	}

	headersBytes, err := json.Marshal(headers)
	if err != nil {
		return "", errors.Wrap(err, "marshal JWS headers")
	}

	input := encoder.EncodeToString(headersBytes) + "." + encoder.EncodeToString(payload)

	signature, err := signer.Sign([]byte(input))
	if err != nil {
		return "", errors.Wrap(err, "sign JWS")
	}

	return input + "." + encoder.EncodeToString(signature), nil
}

// ParseJWS parses a JWS compact serialization. The signature is not verified.
func ParseJWS(compact string) (*JSONWebSignature, error) {
	if strings.HasPrefix(compact, "{") {
		return nil, errors.New("JWS JSON serialization is not supported")
	}

	parts := strings.Split(compact, ".")
	if len(parts) != jwsPartsCount {
		return nil, errors.New("invalid JWS compact format")
	}

	headersBytes, err := encoder.DecodeString(parts[jwsHeaderPart])
	if err != nil {
		return nil, errors.Wrap(err, "decode base64 header")
	}

	var headers jws.Headers

	if err := json.Unmarshal(headersBytes, &headers); err != nil {
		return nil, errors.Wrap(err, "unmarshal JSON headers")
	}

	if err := checkJWSHeaders(headers); err != nil {
		return nil, err
	}

	payload, err := encoder.DecodeString(parts[jwsPayloadPart])
	if err != nil {
		return nil, errors.Wrap(err, "decode base64 payload")
	}

	if len(payload) == 0 {
		return nil, errors.New("compact jws payload is empty")
	}

	signature, err := encoder.DecodeString(parts[jwsSignaturePart])
	if err != nil {
		return nil, errors.Wrap(err, "decode base64 signature")
	}

	if len(signature) == 0 {
		return nil, errors.New("compact jws signature is empty")
	}

	return &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		signingInput:     []byte(parts[jwsHeaderPart] + "." + parts[jwsPayloadPart]),
		signature:        signature,
	}, nil
}

// VerifyJWS parses the compact JWS and verifies its signature against the given key.
func VerifyJWS(compact string, jwk *jws.JWK) (*JSONWebSignature, error) {
	parsed, err := ParseJWS(compact)
	if err != nil {
		return nil, err
	}

	if err := parsed.Verify(jwk); err != nil {
		return nil, err
	}

	return parsed, nil
}

// Verify verifies the signature against the given key.
func (s *JSONWebSignature) Verify(jwk *jws.JWK) error {
	return VerifySignature(jwk, s.signature, s.signingInput)
}

// Signature returns a copy of the JWS signature.
func (s *JSONWebSignature) Signature() []byte {
	if s.signature == nil {
		return nil
	}

	sCopy := make([]byte, len(s.signature))
	copy(sCopy, s.signature)

	return sCopy
}

// IsCompactJWS checks whether input is a compact JWS.
func IsCompactJWS(s string) bool {
	return len(strings.Split(s, ".")) == jwsPartsCount
}

func checkJWSHeaders(headers jws.Headers) error {
	if _, ok := headers.Algorithm(); !ok {
		return errors.Errorf("%s JWS header is not defined", jws.HeaderAlgorithm)
	}

	return nil
}
