/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

const (
	// ControllerProperty defines key for controller.
	ControllerProperty = "controller"

	// PurposesProperty describes key purposes property.
	PurposesProperty = "purposes"

	// PublicKeyJwkProperty describes external public key JWK.
	PublicKeyJwkProperty = "publicKeyJwk"

	// TypeProperty describes type.
	TypeProperty = "type"

	// PublicKeyBase58Property defines base 58 encoding for public key.
	PublicKeyBase58Property = "publicKeyBase58"

	// ServiceEndpointProperty defines service endpoint.
	ServiceEndpointProperty = "serviceEndpoint"
)

// PublicKey must include id, type and publicKeyJwk properties; purposes is optional.
type PublicKey map[string]interface{}

// ID is public key ID.
func (pk PublicKey) ID() string {
	return stringEntry(pk[IDProperty])
}

// Type is public key type.
func (pk PublicKey) Type() string {
	return stringEntry(pk[TypeProperty])
}

// Controller identifies the entity that controls the corresponding private key.
func (pk PublicKey) Controller() string {
	return stringEntry(pk[ControllerProperty])
}

// PublicKeyJwk is value property for JWK.
func (pk PublicKey) PublicKeyJwk() JWK {
	if m, ok := pk[PublicKeyJwkProperty].(map[string]interface{}); ok {
		return m
	}

	if m, ok := pk[PublicKeyJwkProperty].(JWK); ok {
		return m
	}

	return nil
}

// PublicKeyBase58 is base58 encoded public key.
func (pk PublicKey) PublicKeyBase58() string {
	return stringEntry(pk[PublicKeyBase58Property])
}

// Purposes describes key purposes.
func (pk PublicKey) Purposes() []string {
	return StringArray(pk[PurposesProperty])
}

// JSONLdObject returns map that represents JSON LD Object.
func (pk PublicKey) JSONLdObject() map[string]interface{} {
	return pk
}

// JWK represents public key in JWK format.
type JWK map[string]interface{}

// Kty is key type.
func (jwk JWK) Kty() string {
	return stringEntry(jwk["kty"])
}

// Crv is curve.
func (jwk JWK) Crv() string {
	return stringEntry(jwk["crv"])
}

// X is x.
func (jwk JWK) X() string {
	return stringEntry(jwk["x"])
}

// Y is y.
func (jwk JWK) Y() string {
	return stringEntry(jwk["y"])
}

// Service represents any type of service the entity wishes to advertise.
type Service map[string]interface{}

// ID is service ID.
func (s Service) ID() string {
	return stringEntry(s[IDProperty])
}

// Type is service type.
func (s Service) Type() string {
	return stringEntry(s[TypeProperty])
}

// ServiceEndpoint is service endpoint.
func (s Service) ServiceEndpoint() interface{} {
	return s[ServiceEndpointProperty]
}

// JSONLdObject returns map that represents JSON LD Object.
func (s Service) JSONLdObject() map[string]interface{} {
	return s
}
