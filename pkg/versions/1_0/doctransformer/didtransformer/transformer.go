/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didtransformer

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/document"
	internaljws "github.com/trustbloc/sidetree-gateway-go/pkg/internal/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/doctransformer/metadata"
)

const (
	didContext = "https://www.w3.org/ns/did/v1"

	didResolutionContext = "https://w3id.org/did-resolution/v1"

	jsonWebKey2020Ctx                    = "https://w3id.org/security/suites/jws-2020/v1"
	ecdsaSecp256k1VerificationKey2019Ctx = "https://w3id.org/security/suites/secp256k1-2019/v1"
	ed25519VerificationKey2018Ctx        = "https://w3id.org/security/suites/ed25519-2018/v1"
	x25519KeyAgreementKey2019Ctx         = "https://w3id.org/security/suites/x25519-2019/v1"
)

var defaultKeyContextMap = map[string]string{
	document.JSONWebKey2020:                    jsonWebKey2020Ctx,
	document.EcdsaSecp256k1VerificationKey2019: ecdsaSecp256k1VerificationKey2019Ctx,
	document.Ed25519VerificationKey2018:        ed25519VerificationKey2018Ctx,
	document.X25519KeyAgreementKey2019:         x25519KeyAgreementKey2019Ctx,
}

var purposeProperties = map[string]string{
	document.KeyPurposeAuthentication:       document.AuthenticationProperty,
	document.KeyPurposeAssertionMethod:      document.AssertionMethodProperty,
	document.KeyPurposeKeyAgreement:         document.KeyAgreementProperty,
	document.KeyPurposeCapabilityDelegation: document.DelegationKeyProperty,
	document.KeyPurposeCapabilityInvocation: document.InvocationKeyProperty,
}

// Option is a transformer instance option.
type Option func(opts *Transformer)

// WithMethodContext sets optional method context(s).
func WithMethodContext(ctx []string) Option {
	return func(opts *Transformer) {
		opts.methodCtx = ctx
	}
}

// WithKeyContext sets optional key context.
func WithKeyContext(ctx map[string]string) Option {
	return func(opts *Transformer) {
		opts.keyCtx = ctx
	}
}

// WithBase sets optional @base context.
func WithBase(enabled bool) Option {
	return func(opts *Transformer) {
		opts.includeBase = enabled
	}
}

// WithIncludePublishedOperations adds the applied operations to the method metadata.
func WithIncludePublishedOperations(enabled bool) Option {
	return func(opts *Transformer) {
		opts.includePublishedOperations = enabled
	}
}

// Transformer is responsible for transforming internal to external document.
type Transformer struct {
	keyCtx                     map[string]string
	methodCtx                  []string // used for setting additional contexts during resolution
	includeBase                bool
	includePublishedOperations bool
}

// New creates a new DID Transformer.
func New(opts ...Option) *Transformer {
	transformer := &Transformer{}

	// apply options
	for _, opt := range opts {
		opt(transformer)
	}

	// if key contexts are not provided via options use default key contexts
	if len(transformer.keyCtx) == 0 {
		transformer.keyCtx = defaultKeyContextMap
	}

	return transformer
}

// TransformDocument takes internal resolution model and transformation info and creates
// external representation of document (resolution result).
func (t *Transformer) TransformDocument(rm *protocol.ResolutionModel,
	info protocol.TransformationInfo) (*document.ResolutionResult, error) {
	docMetadata, err := metadata.New(metadata.WithIncludePublishedOperations(t.includePublishedOperations)).
		CreateDocumentMetadata(rm, info)
	if err != nil {
		return nil, err
	}

	id, ok := info[protocol.IDKey].(string)
	if !ok || id == "" {
		return nil, errors.New("id is required for document transformation")
	}

	// add main context
	ctx := []interface{}{didContext}

	// add optional method contexts
	for _, c := range t.methodCtx {
		ctx = append(ctx, c)
	}

	if t.includeBase {
		ctx = append(ctx, getBase(id))
	}

	external := make(document.Document)
	external[document.ContextProperty] = ctx
	external[document.IDProperty] = id

	result := &document.ResolutionResult{
		Context:          didResolutionContext,
		Document:         external,
		DocumentMetadata: docMetadata,
	}

	// a deactivated document has no keys or services
	if rm.Deactivated {
		return result, nil
	}

	if err := t.processKeys(rm.Doc, result); err != nil {
		return nil, fmt.Errorf("failed to transform public keys for did document: %s", err.Error())
	}

	t.processServices(rm.Doc, result)

	return result, nil
}

func getBase(id string) interface{} {
	return &struct {
		Base string `json:"@base"`
	}{
		Base: id,
	}
}

// processServices will process services and add them to external document.
func (t *Transformer) processServices(internal document.Document, resolutionResult *document.ResolutionResult) {
	var services []document.Service

	did := resolutionResult.Document.ID()

	// add did to service id
	for _, sv := range internal.Services() {
		externalService := make(document.Service)
		externalService[document.IDProperty] = t.getObjectID(did, sv.ID())
		externalService[document.TypeProperty] = sv.Type()
		externalService[document.ServiceEndpointProperty] = sv.ServiceEndpoint()

		for key, value := range sv {
			if _, ok := externalService[key]; !ok {
				externalService[key] = value
			}
		}

		services = append(services, externalService)
	}

	if len(services) > 0 {
		resolutionResult.Document[document.ServiceProperty] = services
	}
}

// processKeys adds every key to the verificationMethod section and references it, by full id,
// from the section of each of its purposes.
func (t *Transformer) processKeys(internal document.Document, resolutionResult *document.ResolutionResult) error {
	purposes := make(map[string][]interface{})

	did := resolutionResult.Document.ID()

	var publicKeys []document.PublicKey

	var keyContexts []interface{}

	for _, pk := range internal.PublicKeys() {
		id := t.getObjectID(did, pk.ID())

		externalPK := make(document.PublicKey)
		externalPK[document.IDProperty] = id
		externalPK[document.TypeProperty] = pk.Type()
		externalPK[document.ControllerProperty] = t.getController(did)

		if pk.Type() == document.Ed25519VerificationKey2018 {
			ed25519PubKey, err := getED2519PublicKey(pk.PublicKeyJwk())
			if err != nil {
				return err
			}

			externalPK[document.PublicKeyBase58Property] = base58.Encode(ed25519PubKey)
		} else {
			externalPK[document.PublicKeyJwkProperty] = pk.PublicKeyJwk()
		}

		keyContext, ok := t.keyCtx[pk.Type()]
		if !ok {
			return fmt.Errorf("key context not found for key type: %s", pk.Type())
		}

		if !contains(keyContexts, keyContext) {
			keyContexts = append(keyContexts, keyContext)
		}

		publicKeys = append(publicKeys, externalPK)

		for _, p := range pk.Purposes() {
			if property, ok := purposeProperties[p]; ok {
				purposes[property] = append(purposes[property], id)
			}
		}
	}

	if len(publicKeys) > 0 {
		resolutionResult.Document[document.VerificationMethodProperty] = publicKeys

		// we need to add key context(s) to original context
		ctx, _ := resolutionResult.Document[document.ContextProperty].([]interface{}) //nolint:errcheck
		resolutionResult.Document[document.ContextProperty] = append(ctx, keyContexts...)
	}

	for key, value := range purposes {
		resolutionResult.Document[key] = value
	}

	return nil
}

func contains(values []interface{}, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}

func (t *Transformer) getObjectID(docID string, objectID string) string {
	relativeID := "#" + objectID
	if t.includeBase {
		return relativeID
	}

	return docID + relativeID
}

func (t *Transformer) getController(docID string) string {
	if t.includeBase {
		return ""
	}

	return docID
}

func getED2519PublicKey(pkJWK document.JWK) ([]byte, error) {
	jwk := &jws.JWK{
		Crv: pkJWK.Crv(),
		Kty: pkJWK.Kty(),
		X:   pkJWK.X(),
		Y:   pkJWK.Y(),
	}

	pubKey, err := internaljws.PublicKeyFromJWK(jwk)
	if err != nil {
		return nil, err
	}

	ed25519PubKey, ok := pubKey.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("unexpected public key type for ed25519")
	}

	return ed25519PubKey, nil
}
