/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/commitment"
	internal "github.com/trustbloc/sidetree-gateway-go/pkg/internal/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/jws"
	"github.com/trustbloc/sidetree-gateway-go/pkg/patch"
	"github.com/trustbloc/sidetree-gateway-go/pkg/util/signer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/client"
)

// DefaultDocument is a minimal valid opaque document with one key.
const DefaultDocument = `{"publicKeys":[{"id":"key1","type":"JsonWebKey2020","purposes":["authentication"],"publicKeyJwk":{"kty":"OKP","crv":"Ed25519","x":"o40shZrsco-CfEqk6mFsXfcP94ly3Az3gm84PzAUsXo"}}]}`

type keyPair struct {
	signer *signer.Ed25519
	jwk    *jws.JWK
}

// DID generates signed operation requests for one DID, keeping track of the current update
// and recovery keys.
type DID struct {
	Suffix        string
	CreateRequest []byte

	createInfo *client.CreateRequestInfo
	recovery   *keyPair
	update     *keyPair
}

// NewDID generates fresh keys and the create request for the opaque document.
func NewDID(opaqueDocument string) (*DID, error) {
	recovery, err := newKeyPair()
	if err != nil {
		return nil, err
	}

	update, err := newKeyPair()
	if err != nil {
		return nil, err
	}

	recoveryCommitment, err := commitment.GetCommitment(recovery.jwk, sha2_256)
	if err != nil {
		return nil, err
	}

	updateCommitment, err := commitment.GetCommitment(update.jwk, sha2_256)
	if err != nil {
		return nil, err
	}

	info := &client.CreateRequestInfo{
		OpaqueDocument:     opaqueDocument,
		RecoveryCommitment: recoveryCommitment,
		UpdateCommitment:   updateCommitment,
		MultihashCode:      sha2_256,
	}

	request, err := client.NewCreateRequest(info)
	if err != nil {
		return nil, err
	}

	suffix, err := client.GetUniqueSuffix(request, sha2_256)
	if err != nil {
		return nil, err
	}

	return &DID{
		Suffix:        suffix,
		CreateRequest: request,
		createInfo:    info,
		recovery:      recovery,
		update:        update,
	}, nil
}

// LongForm returns the long-form DID in the given namespace.
func (d *DID) LongForm(namespace string) (string, error) {
	return client.NewLongFormDID(namespace, d.createInfo)
}

// Fork returns a copy sharing the current key state. Requests generated by the copy reveal the
// same keys as requests generated by the original.
func (d *DID) Fork() *DID {
	c := *d

	return &c
}

// Update returns an update request signed with the current update key and advances the update key.
func (d *DID) Update(patches ...patch.Patch) ([]byte, error) {
	if len(patches) == 0 {
		return nil, errors.New("missing patches")
	}

	next, err := newKeyPair()
	if err != nil {
		return nil, err
	}

	nextCommitment, err := commitment.GetCommitment(next.jwk, sha2_256)
	if err != nil {
		return nil, err
	}

	request, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
		DidSuffix:        d.Suffix,
		Patches:          patches,
		UpdateCommitment: nextCommitment,
		UpdateKey:        d.update.jwk,
		MultihashCode:    sha2_256,
		Signer:           d.update.signer,
	})
	if err != nil {
		return nil, err
	}

	d.update = next

	return request, nil
}

// Recover returns a recover request replacing the document and advances both keys.
func (d *DID) Recover(opaqueDocument string) ([]byte, error) {
	nextRecovery, err := newKeyPair()
	if err != nil {
		return nil, err
	}

	nextUpdate, err := newKeyPair()
	if err != nil {
		return nil, err
	}

	recoveryCommitment, err := commitment.GetCommitment(nextRecovery.jwk, sha2_256)
	if err != nil {
		return nil, err
	}

	updateCommitment, err := commitment.GetCommitment(nextUpdate.jwk, sha2_256)
	if err != nil {
		return nil, err
	}

	request, err := client.NewRecoverRequest(&client.RecoverRequestInfo{
		DidSuffix:          d.Suffix,
		RecoveryKey:        d.recovery.jwk,
		OpaqueDocument:     opaqueDocument,
		RecoveryCommitment: recoveryCommitment,
		UpdateCommitment:   updateCommitment,
		MultihashCode:      sha2_256,
		Signer:             d.recovery.signer,
	})
	if err != nil {
		return nil, err
	}

	d.recovery = nextRecovery
	d.update = nextUpdate

	return request, nil
}

// Deactivate returns a deactivate request signed with the current recovery key.
func (d *DID) Deactivate() ([]byte, error) {
	return client.NewDeactivateRequest(&client.DeactivateRequestInfo{
		DidSuffix:     d.Suffix,
		RecoveryKey:   d.recovery.jwk,
		MultihashCode: sha2_256,
		Signer:        d.recovery.signer,
	})
}

func newKeyPair() (*keyPair, error) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	jwk, err := internal.JWKFromPublicKey(pubKey)
	if err != nil {
		return nil, err
	}

	return &keyPair{signer: signer.NewEd25519(privKey, ""), jwk: jwk}, nil
}
