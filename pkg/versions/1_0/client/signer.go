/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/commitment"
	internal "github.com/trustbloc/sidetree-gateway-go/pkg/internal/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
)

// Signer defines JWS Signer interface that will be used to sign required data in Sidetree request.
type Signer interface {
	// Sign signs data and returns signature value
	Sign(data []byte) ([]byte, error)

	// Headers provides required JWS protected headers. It provides information about signing key and algorithm.
	Headers() jws.Headers
}

func signModel(model interface{}, signer Signer) (string, error) {
	payload, err := canonicalizer.MarshalCanonical(model)
	if err != nil {
		return "", err
	}

	return internal.SignCompact(nil, payload, signer)
}

func validateSigner(signer Signer) error {
	if signer == nil {
		return errors.New("missing signer")
	}

	if signer.Headers() == nil {
		return errors.New("missing protected headers")
	}

	alg, ok := signer.Headers().Algorithm()
	if !ok {
		return errors.New("algorithm must be present in the protected header")
	}

	if alg == "" {
		return errors.New("algorithm cannot be empty in the protected header")
	}

	return nil
}

func validateKey(key *jws.JWK, alias string) error {
	if key == nil {
		return errors.New("missing " + alias)
	}

	return key.Validate()
}

func validateNextCommitment(jwk *jws.JWK, multihashCode uint, nextCommitment string) error {
	currentCommitment, err := commitment.GetCommitment(jwk, multihashCode)
	if err != nil {
		return err
	}

	if currentCommitment == nextCommitment {
		return errors.New("re-using public keys for commitment is not allowed")
	}

	return nil
}
