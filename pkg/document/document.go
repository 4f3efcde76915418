/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
)

// Document properties.
const (
	IDProperty         = "id"
	ContextProperty    = "@context"
	PublicKeysProperty = "publicKeys"
	ServicesProperty   = "services"

	// External (resolved) document properties.
	ServiceProperty            = "service"
	VerificationMethodProperty = "verificationMethod"
	AuthenticationProperty     = "authentication"
	AssertionMethodProperty    = "assertionMethod"
	KeyAgreementProperty       = "keyAgreement"
	DelegationKeyProperty      = "capabilityDelegation"
	InvocationKeyProperty      = "capabilityInvocation"
)

// Document is the internal document state built up by patches.
type Document map[string]interface{}

// FromBytes creates an instance of Document by reading a JSON document from bytes.
func FromBytes(data []byte) (Document, error) {
	doc := make(Document)

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// ID is document identifier.
func (doc Document) ID() string {
	return stringEntry(doc[IDProperty])
}

// PublicKeys returns the public keys of the document.
func (doc Document) PublicKeys() []PublicKey {
	return ParsePublicKeys(doc[PublicKeysProperty])
}

// Services returns the services of the document.
func (doc Document) Services() []Service {
	return ParseServices(doc[ServicesProperty])
}

// GetStringValue returns string value for specified key or "" if not found or wrong type.
func (doc Document) GetStringValue(key string) string {
	return stringEntry(doc[key])
}

// Bytes returns the canonical JSON of the document.
func (doc Document) Bytes() ([]byte, error) {
	return canonicalizer.MarshalCanonical(doc)
}

// Clone returns a deep copy of the document.
func (doc Document) Clone() (Document, error) {
	if doc == nil {
		return nil, nil
	}

	bytes, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	return FromBytes(bytes)
}

// JSONLdObject returns map that represents JSON LD Object.
func (doc Document) JSONLdObject() map[string]interface{} {
	return doc
}

// ParsePublicKeys parses an array of public keys, skipping entries that are not objects.
func ParsePublicKeys(entry interface{}) []PublicKey {
	var result []PublicKey

	for _, e := range interfaceArray(entry) {
		if emap, ok := toMap(e); ok {
			result = append(result, PublicKey(emap))
		}
	}

	return result
}

// ParseServices parses an array of services, skipping entries that are not objects.
func ParseServices(entry interface{}) []Service {
	var result []Service

	for _, e := range interfaceArray(entry) {
		if emap, ok := toMap(e); ok {
			result = append(result, Service(emap))
		}
	}

	return result
}

// StringArray is utility function to return string array from interface.
func StringArray(entry interface{}) []string {
	if strs, ok := entry.([]string); ok {
		return strs
	}

	var result []string

	for _, e := range interfaceArray(entry) {
		if val, ok := e.(string); ok {
			result = append(result, val)
		}
	}

	return result
}

func stringEntry(entry interface{}) string {
	str, ok := entry.(string)
	if !ok {
		return ""
	}

	return str
}

func toMap(entry interface{}) (map[string]interface{}, bool) {
	switch m := entry.(type) {
	case map[string]interface{}:
		return m, true
	case PublicKey:
		return m, true
	case Service:
		return m, true
	default:
		return nil, false
	}
}

func interfaceArray(entry interface{}) []interface{} {
	switch entries := entry.(type) {
	case []interface{}:
		return entries
	case []PublicKey:
		result := make([]interface{}, len(entries))
		for i, e := range entries {
			result[i] = e
		}

		return result
	case []Service:
		result := make([]interface{}, len(entries))
		for i, e := range entries {
			result[i] = e
		}

		return result
	default:
		return nil
	}
}
