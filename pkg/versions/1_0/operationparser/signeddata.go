/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/commitment"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	internal "github.com/trustbloc/sidetree-gateway-go/pkg/internal/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
)

// parseSignedData parses the compact JWS and unmarshals its payload into the model. The signature
// is verified with the key returned by keyOf once the payload is known.
func (p *Parser) parseSignedData(compactJWS string, model interface{}, keyOf func() *jws.JWK) error {
	if compactJWS == "" {
		return errors.New("missing signed data")
	}

	signedData, err := internal.ParseJWS(compactJWS)
	if err != nil {
		return fmt.Errorf("failed to parse signed data: %s", err.Error())
	}

	err = p.validateProtectedHeaders(signedData.ProtectedHeaders, p.SignatureAlgorithms)
	if err != nil {
		return fmt.Errorf("failed to parse signed data: %s", err.Error())
	}

	err = json.Unmarshal(signedData.Payload, model)
	if err != nil {
		return fmt.Errorf("failed to unmarshal signed data model: %s", err.Error())
	}

	key := keyOf()

	if err := p.validateSigningKey(key, p.KeyAlgorithms); err != nil {
		return err
	}

	if err := signedData.Verify(key); err != nil {
		return fmt.Errorf("signed data: %s", err.Error())
	}

	return nil
}

func (p *Parser) validateProtectedHeaders(headers jws.Headers, allowedAlgorithms []string) error {
	if headers == nil {
		return errors.New("missing protected headers")
	}

	// kid MAY be present in the protected header.
	// alg MUST be present in the protected header, its value MUST NOT be none.
	// no additional members may be present in the protected header.

	alg, ok := headers.Algorithm()
	if !ok {
		return errors.New("algorithm must be present in the protected header")
	}

	if alg == "" {
		return errors.New("algorithm cannot be empty in the protected header")
	}

	allowedHeaders := map[string]bool{
		jws.HeaderAlgorithm: true,
		jws.HeaderKeyID:     true,
	}

	for k := range headers {
		if _, ok := allowedHeaders[k]; !ok {
			return fmt.Errorf("invalid protected header: %s", k)
		}
	}

	if !contains(allowedAlgorithms, alg) {
		return errors.Errorf("algorithm '%s' is not in the allowed list %v", alg, allowedAlgorithms)
	}

	return nil
}

func (p *Parser) validateSigningKey(key *jws.JWK, allowedAlgorithms []string) error {
	if key == nil {
		return errors.New("missing signing key")
	}

	err := key.Validate()
	if err != nil {
		return fmt.Errorf("signing key validation failed: %s", err.Error())
	}

	if !contains(allowedAlgorithms, key.Crv) {
		return errors.Errorf("key algorithm '%s' is not in the allowed list %v", key.Crv, allowedAlgorithms)
	}

	return nil
}

// validateRevealValue checks that the reveal value was computed from the signing key.
func (p *Parser) validateRevealValue(key *jws.JWK, revealValue string) error {
	if err := p.validateMultihash(revealValue, "reveal value"); err != nil {
		return err
	}

	return commitment.VerifyKey(key, revealValue)
}

// validateCommitment checks that the next commitment is not computed from the current key.
func (p *Parser) validateCommitment(jwk *jws.JWK, nextCommitment string) error {
	code, err := hashing.GetMultihashCode(nextCommitment)
	if err != nil {
		return err
	}

	currentCommitment, err := commitment.GetCommitment(jwk, uint(code))
	if err != nil {
		return fmt.Errorf("calculate current commitment: %s", err.Error())
	}

	if currentCommitment == nextCommitment {
		return errors.New("re-using public keys for commitment is not allowed")
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}

// requireSignedRequest checks the fields every update, recover and deactivate request carries.
func requireSignedRequest(didSuffix, signedData string) error {
	if didSuffix == "" {
		return errors.New("missing did suffix")
	}

	if signedData == "" {
		return errors.New("missing signed data")
	}

	return nil
}
