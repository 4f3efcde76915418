/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/pkg/errors"
)

//nolint:gochecknoglobals
var asciiRegex = regexp.MustCompile("^[A-Za-z0-9_-]+$")

// Key purposes.
const (
	KeyPurposeAuthentication       = "authentication"
	KeyPurposeAssertionMethod      = "assertionMethod"
	KeyPurposeKeyAgreement         = "keyAgreement"
	KeyPurposeCapabilityDelegation = "capabilityDelegation"
	KeyPurposeCapabilityInvocation = "capabilityInvocation"
)

// Key types.
const (
	JSONWebKey2020                    = "JsonWebKey2020"
	EcdsaSecp256k1VerificationKey2019 = "EcdsaSecp256k1VerificationKey2019"
	X25519KeyAgreementKey2019         = "X25519KeyAgreementKey2019"

	// Ed25519VerificationKey2018 is resolved with a base58 key value.
	Ed25519VerificationKey2018 = "Ed25519VerificationKey2018"
)

const (
	maxIDLength              = 50
	maxServiceTypeLength     = 30
	maxServiceEndpointLength = 100
)

type existenceMap map[string]struct{}

var allowedPurposes = existenceMap{
	KeyPurposeAuthentication:       {},
	KeyPurposeAssertionMethod:      {},
	KeyPurposeKeyAgreement:         {},
	KeyPurposeCapabilityDelegation: {},
	KeyPurposeCapabilityInvocation: {},
}

var allowedKeyTypesVerification = existenceMap{
	JSONWebKey2020:                    {},
	EcdsaSecp256k1VerificationKey2019: {},
	Ed25519VerificationKey2018:        {},
}

var allowedKeyTypesAgreement = existenceMap{
	JSONWebKey2020:            {},
	X25519KeyAgreementKey2019: {},
}

var allowedKeyTypes = map[string]existenceMap{
	KeyPurposeAuthentication:       allowedKeyTypesVerification,
	KeyPurposeAssertionMethod:      allowedKeyTypesVerification,
	KeyPurposeKeyAgreement:         allowedKeyTypesAgreement,
	KeyPurposeCapabilityDelegation: allowedKeyTypesVerification,
	KeyPurposeCapabilityInvocation: allowedKeyTypesVerification,
}

// ValidatePublicKeys validates public keys.
func ValidatePublicKeys(pubKeys []PublicKey) error {
	ids := make(map[string]struct{})

	for _, pubKey := range pubKeys {
		kid := pubKey.ID()
		if err := ValidateID(kid); err != nil {
			return errors.Wrap(err, "public key")
		}

		if _, ok := ids[kid]; ok {
			return fmt.Errorf("duplicate public key id: %s", kid)
		}

		ids[kid] = struct{}{}

		if err := validateKeyPurposes(pubKey); err != nil {
			return err
		}

		if !validateKeyTypePurposes(pubKey) {
			return fmt.Errorf("invalid key type: %s", pubKey.Type())
		}

		if err := ValidateJWK(pubKey.PublicKeyJwk()); err != nil {
			return err
		}
	}

	return nil
}

// ValidateID validates id.
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id is missing")
	}

	if len(id) > maxIDLength {
		return fmt.Errorf("id exceeds maximum length: %d", maxIDLength)
	}

	if !asciiRegex.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateServices validates services.
func ValidateServices(services []Service) error {
	ids := make(map[string]struct{})

	for _, service := range services {
		if err := ValidateID(service.ID()); err != nil {
			return errors.Wrap(err, "service")
		}

		if _, ok := ids[service.ID()]; ok {
			return fmt.Errorf("duplicate service id: %s", service.ID())
		}

		ids[service.ID()] = struct{}{}

		if err := validateServiceType(service.Type()); err != nil {
			return err
		}

		if err := validateServiceEndpoint(service.ServiceEndpoint()); err != nil {
			return err
		}
	}

	return nil
}

func validateServiceType(serviceType string) error {
	if serviceType == "" {
		return errors.New("service type is missing")
	}

	if len(serviceType) > maxServiceTypeLength {
		return fmt.Errorf("service type exceeds maximum length: %d", maxServiceTypeLength)
	}

	return nil
}

func validateServiceEndpoint(serviceEndpoint interface{}) error {
	if serviceEndpoint == nil {
		return errors.New("service endpoint is missing")
	}

	uri, ok := serviceEndpoint.(string)
	if !ok {
		// objects and arrays are allowed as-is
		return nil
	}

	if uri == "" {
		return errors.New("service endpoint is missing")
	}

	if len(uri) > maxServiceEndpointLength {
		return fmt.Errorf("service endpoint exceeds maximum length: %d", maxServiceEndpointLength)
	}

	if _, err := url.ParseRequestURI(uri); err != nil {
		return fmt.Errorf("service endpoint is not valid URI: %s", err.Error())
	}

	return nil
}

// ValidateJWK validates JWK.
func ValidateJWK(jwk JWK) error {
	if jwk == nil {
		return errors.New("key has to be in JWK format")
	}

	if jwk.Crv() == "" {
		return errors.New("JWK crv is missing")
	}

	if jwk.Kty() == "" {
		return errors.New("JWK kty is missing")
	}

	if jwk.X() == "" {
		return errors.New("JWK x is missing")
	}

	return nil
}

func validateKeyTypePurposes(pubKey PublicKey) bool {
	for _, purpose := range pubKey.Purposes() {
		if _, ok := allowedKeyTypes[purpose][pubKey.Type()]; !ok {
			return false
		}
	}

	if len(pubKey.Purposes()) == 0 {
		_, verification := allowedKeyTypesVerification[pubKey.Type()]
		_, agreement := allowedKeyTypesAgreement[pubKey.Type()]

		return verification || agreement
	}

	return true
}

func validateKeyPurposes(pubKey PublicKey) error {
	purposes := pubKey.Purposes()

	if len(purposes) > len(allowedPurposes) {
		return fmt.Errorf("public key purposes exceeds maximum length: %d", len(allowedPurposes))
	}

	for _, purpose := range purposes {
		if _, ok := allowedPurposes[purpose]; !ok {
			return fmt.Errorf("invalid purpose: %s", purpose)
		}
	}

	return nil
}

// ValidateDocument validates the public keys and services of a document.
func ValidateDocument(doc Document) error {
	if doc.ID() != "" {
		return errors.New("document must NOT have the id property")
	}

	if err := ValidatePublicKeys(doc.PublicKeys()); err != nil {
		return err
	}

	return ValidateServices(doc.Services())
}
