/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package patch

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
)

// Action defines action of document patch.
type Action string

const (
	// Replace captures enum value "replace".
	Replace Action = "replace"

	// AddPublicKeys captures enum value "add-public-keys".
	AddPublicKeys Action = "add-public-keys"

	// RemovePublicKeys captures enum value "remove-public-keys".
	RemovePublicKeys Action = "remove-public-keys"

	// AddServiceEndpoints captures "add-services".
	AddServiceEndpoints Action = "add-services"

	// RemoveServiceEndpoints captures "remove-services".
	RemoveServiceEndpoints Action = "remove-services"

	// JSONPatch captures enum value "ietf-json-patch".
	JSONPatch Action = "ietf-json-patch"
)

// Key defines key that will be used to get document patch information.
type Key string

const (
	// DocumentKey captures "document" key.
	DocumentKey Key = "document"

	// PatchesKey captures "patches" key.
	PatchesKey Key = "patches"

	// PublicKeys captures "publicKeys" key.
	PublicKeys Key = "publicKeys"

	// ServicesKey captures "services" key.
	ServicesKey Key = "services"

	// IdsKey captures "ids" key.
	IdsKey Key = "ids"

	// ActionKey captures "action" key.
	ActionKey Key = "action"
)

// Patch defines generic patch structure.
type Patch map[Key]interface{}

// NewReplacePatch creates new replace patch.
func NewReplacePatch(doc string) (Patch, error) {
	parsed, err := document.FromBytes([]byte(doc))
	if err != nil {
		return nil, errors.Wrap(err, "parse document")
	}

	return newPatch(Replace, DocumentKey, map[string]interface{}(parsed))
}

// NewJSONPatch creates new generic update patch.
func NewJSONPatch(patches string) (Patch, error) {
	var parsed []interface{}

	if err := json.Unmarshal([]byte(patches), &parsed); err != nil {
		return nil, errors.Wrap(err, "parse json patches")
	}

	return newPatch(JSONPatch, PatchesKey, parsed)
}

// NewAddPublicKeysPatch creates new patch for adding public keys.
func NewAddPublicKeysPatch(publicKeys string) (Patch, error) {
	var parsed []interface{}

	if err := json.Unmarshal([]byte(publicKeys), &parsed); err != nil {
		return nil, errors.Wrap(err, "parse public keys")
	}

	return newPatch(AddPublicKeys, PublicKeys, parsed)
}

// NewRemovePublicKeysPatch creates new patch for removing public keys.
func NewRemovePublicKeysPatch(ids ...string) (Patch, error) {
	return newPatch(RemovePublicKeys, IdsKey, stringsToInterfaces(ids))
}

// NewAddServiceEndpointsPatch creates new patch for adding service endpoints.
func NewAddServiceEndpointsPatch(services string) (Patch, error) {
	var parsed []interface{}

	if err := json.Unmarshal([]byte(services), &parsed); err != nil {
		return nil, errors.Wrap(err, "parse services")
	}

	return newPatch(AddServiceEndpoints, ServicesKey, parsed)
}

// NewRemoveServiceEndpointsPatch creates new patch for removing service endpoints.
func NewRemoveServiceEndpointsPatch(ids ...string) (Patch, error) {
	return newPatch(RemoveServiceEndpoints, IdsKey, stringsToInterfaces(ids))
}

func newPatch(action Action, key Key, value interface{}) (Patch, error) {
	p := Patch{
		ActionKey: string(action),
		key:       value,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// GetValue returns value for specified key or nil if not found.
func (p Patch) GetValue(key Key) interface{} {
	return p[key]
}

// GetAction returns the action of the patch or "" if missing.
func (p Patch) GetAction() Action {
	switch action := p[ActionKey].(type) {
	case string:
		return Action(action)
	case Action:
		return action
	default:
		return ""
	}
}

// Bytes returns the canonical JSON of the patch.
func (p Patch) Bytes() ([]byte, error) {
	return canonicalizer.MarshalCanonical(p)
}

// Validate validates patch.
func (p Patch) Validate() error {
	action := p.GetAction()
	if action == "" {
		return errors.New("patch is missing action property")
	}

	switch action {
	case Replace:
		doc, err := p.getRequiredMap(DocumentKey)
		if err != nil {
			return err
		}

		return document.ValidateDocument(doc)
	case JSONPatch:
		return p.validateJSONPatches()
	case AddPublicKeys:
		keys, err := p.getRequiredArray(PublicKeys)
		if err != nil {
			return err
		}

		return document.ValidatePublicKeys(document.ParsePublicKeys(keys))
	case AddServiceEndpoints:
		services, err := p.getRequiredArray(ServicesKey)
		if err != nil {
			return err
		}

		return document.ValidateServices(document.ParseServices(services))
	case RemovePublicKeys, RemoveServiceEndpoints:
		return p.validateIDs()
	}

	return fmt.Errorf("action '%s' is not supported", action)
}

// GetIDs returns the ids of a remove patch.
func (p Patch) GetIDs() []string {
	return document.StringArray(p[IdsKey])
}

// JSONLdObject returns map that represents JSON LD Object.
func (p Patch) JSONLdObject() map[Key]interface{} {
	return p
}

// FromBytes parses provided data into document patch.
func FromBytes(data []byte) (Patch, error) {
	p := make(Patch)

	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// PatchesFromDocument creates the patches that build the given document from scratch.
func PatchesFromDocument(doc string) ([]Patch, error) {
	p, err := NewReplacePatch(doc)
	if err != nil {
		return nil, err
	}

	return []Patch{p}, nil
}

func (p Patch) validateIDs() error {
	ids, err := p.getRequiredArray(IdsKey)
	if err != nil {
		return err
	}

	for _, id := range ids {
		idStr, ok := id.(string)
		if !ok {
			return fmt.Errorf("%s patch ids must be strings", p.GetAction())
		}

		if err := document.ValidateID(idStr); err != nil {
			return err
		}
	}

	return nil
}

func (p Patch) validateJSONPatches() error {
	patches, err := p.getRequiredArray(PatchesKey)
	if err != nil {
		return err
	}

	patchesBytes, err := json.Marshal(patches)
	if err != nil {
		return err
	}

	if _, err := jsonpatch.DecodePatch(patchesBytes); err != nil {
		return errors.Wrap(err, "invalid json patch")
	}

	for _, entry := range patches {
		op, ok := entry.(map[string]interface{})
		if !ok {
			return errors.New("json patch entry must be an object")
		}

		path, _ := op["path"].(string) //nolint:errcheck
		if isProtectedPath(path) {
			return fmt.Errorf("%s patch cannot modify %s, use the dedicated actions", JSONPatch, path)
		}
	}

	return nil
}

func isProtectedPath(path string) bool {
	for _, prefix := range []string{"/" + document.PublicKeysProperty, "/" + document.ServicesProperty} {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			return true
		}
	}

	return false
}

func (p Patch) getRequiredMap(key Key) (map[string]interface{}, error) {
	entry := p.GetValue(key)
	if entry == nil {
		return nil, fmt.Errorf("%s patch is missing %s", p.GetAction(), key)
	}

	switch m := entry.(type) {
	case map[string]interface{}:
		return m, nil
	case document.Document:
		return m, nil
	default:
		return nil, fmt.Errorf("%s patch %s must be an object", p.GetAction(), key)
	}
}

func (p Patch) getRequiredArray(key Key) ([]interface{}, error) {
	entry := p.GetValue(key)
	if entry == nil {
		return nil, fmt.Errorf("%s patch is missing %s", p.GetAction(), key)
	}

	arr, ok := entry.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s patch %s must be an array", p.GetAction(), key)
	}

	return arr, nil
}

func stringsToInterfaces(values []string) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}

	return result
}
