/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package doccomposer

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/patch"
)

var logger = log.New("sidetree-gateway-composer")

// DocumentComposer applies patches to the internal document state.
type DocumentComposer struct{}

// New creates a new document composer.
func New() *DocumentComposer {
	return &DocumentComposer{}
}

// ApplyPatches applies patches to a copy of the document. The input document is not modified.
func (c *DocumentComposer) ApplyPatches(doc document.Document, patches []patch.Patch) (document.Document, error) {
	result, err := doc.Clone()
	if err != nil {
		return nil, errors.Wrap(err, "clone document")
	}

	if result == nil {
		result = make(document.Document)
	}

	for _, p := range patches {
		result, err = applyPatch(result, p)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func applyPatch(doc document.Document, p patch.Patch) (document.Document, error) {
	action := p.GetAction()

	logger.Debug("Applying patch", log.WithReason(string(action)))

	switch action {
	case patch.Replace:
		return applyReplace(p.GetValue(patch.DocumentKey))
	case patch.JSONPatch:
		return applyJSON(doc, p.GetValue(patch.PatchesKey))
	case patch.AddPublicKeys:
		return applyAdd(doc, document.PublicKeysProperty, p.GetValue(patch.PublicKeys))
	case patch.RemovePublicKeys:
		return applyRemove(doc, document.PublicKeysProperty, p.GetIDs()), nil
	case patch.AddServiceEndpoints:
		return applyAdd(doc, document.ServicesProperty, p.GetValue(patch.ServicesKey))
	case patch.RemoveServiceEndpoints:
		return applyRemove(doc, document.ServicesProperty, p.GetIDs()), nil
	}

	return nil, fmt.Errorf("action '%s' is not supported", action)
}

func applyReplace(newDoc interface{}) (document.Document, error) {
	bytes, err := json.Marshal(newDoc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal replacement document")
	}

	doc, err := document.FromBytes(bytes)
	if err != nil {
		return nil, errors.Wrap(err, "replacement document")
	}

	result := make(document.Document)

	// only keys and services survive a replace
	if keys, ok := doc[document.PublicKeysProperty]; ok {
		result[document.PublicKeysProperty] = keys
	}

	if services, ok := doc[document.ServicesProperty]; ok {
		result[document.ServicesProperty] = services
	}

	return result, nil
}

func applyJSON(doc document.Document, patches interface{}) (document.Document, error) {
	patchesBytes, err := json.Marshal(patches)
	if err != nil {
		return nil, err
	}

	jsonPatches, err := jsonpatch.DecodePatch(patchesBytes)
	if err != nil {
		return nil, err
	}

	docBytes, err := doc.Bytes()
	if err != nil {
		return nil, err
	}

	docBytes, err = jsonPatches.Apply(docBytes)
	if err != nil {
		return nil, err
	}

	return document.FromBytes(docBytes)
}

// applyAdd adds entries to the array property. An entry with an existing id replaces the existing entry in place.
func applyAdd(doc document.Document, property string, entries interface{}) (document.Document, error) {
	added, ok := entries.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s to add must be an array", property)
	}

	existing := entriesOf(doc, property)

	index := make(map[string]int, len(existing))
	for i, e := range existing {
		index[idOf(e)] = i
	}

	for _, entry := range added {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s entry must be an object", property)
		}

		if i, exists := index[idOf(m)]; exists {
			existing[i] = m

			continue
		}

		index[idOf(m)] = len(existing)
		existing = append(existing, m)
	}

	doc[property] = toInterfaces(existing)

	return doc, nil
}

func applyRemove(doc document.Document, property string, ids []string) document.Document {
	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}

	var kept []map[string]interface{}

	for _, e := range entriesOf(doc, property) {
		if _, ok := remove[idOf(e)]; !ok {
			kept = append(kept, e)
		}
	}

	doc[property] = toInterfaces(kept)

	return doc
}

func entriesOf(doc document.Document, property string) []map[string]interface{} {
	var result []map[string]interface{}

	if property == document.PublicKeysProperty {
		for _, pk := range doc.PublicKeys() {
			result = append(result, pk)
		}

		return result
	}

	for _, svc := range doc.Services() {
		result = append(result, svc)
	}

	return result
}

func idOf(entry map[string]interface{}) string {
	id, _ := entry[document.IDProperty].(string) //nolint:errcheck

	return id
}

func toInterfaces(entries []map[string]interface{}) []interface{} {
	result := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}

	return result
}
