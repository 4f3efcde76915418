/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

// ResolutionResult describes resolution result.
type ResolutionResult struct {
	Context          string   `json:"@context"`
	Document         Document `json:"didDocument"`
	DocumentMetadata Metadata `json:"didDocumentMetadata,omitempty"`
}

// Metadata can contains various metadata such as document metadata and method metadata.
type Metadata map[string]interface{}

const (
	// UpdateCommitmentProperty is update commitment key.
	UpdateCommitmentProperty = "updateCommitment"

	// RecoveryCommitmentProperty is recovery commitment key.
	RecoveryCommitmentProperty = "recoveryCommitment"

	// PublishedProperty is published key.
	PublishedProperty = "published"

	// DeactivatedProperty is deactivated flag key.
	DeactivatedProperty = "deactivated"

	// CanonicalIDProperty is canonical ID key.
	CanonicalIDProperty = "canonicalId"

	// EquivalentIDProperty is equivalent ID array.
	EquivalentIDProperty = "equivalentId"

	// MethodProperty is used for method metadata within did document metadata.
	MethodProperty = "method"

	// AnchoredAtProperty is the anchor point of the last applied operation.
	AnchoredAtProperty = "anchoredAt"

	// VersionIDProperty is the batch hash of the last applied operation.
	VersionIDProperty = "versionId"

	// IncompleteProperty is set in method metadata when an anchored batch could not be read.
	IncompleteProperty = "incomplete"
)

// IsDeactivated returns true if the metadata marks the document as deactivated.
func (r *ResolutionResult) IsDeactivated() bool {
	if r == nil || r.DocumentMetadata == nil {
		return false
	}

	deactivated, ok := r.DocumentMetadata[DeactivatedProperty].(bool)

	return ok && deactivated
}
