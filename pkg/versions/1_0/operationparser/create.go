/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/operation"
	"github.com/trustbloc/sidetree-gateway-go/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/hashing"
	"github.com/trustbloc/sidetree-gateway-go/pkg/patch"
	"github.com/trustbloc/sidetree-gateway-go/pkg/versions/1_0/model"
)

// ParseCreateOperation parses a create request. The unique suffix is derived from the suffix data alone,
// so in batch mode a create with an invalid delta still claims its DID; the applier then gives it an
// empty document.
func (p *Parser) ParseCreateOperation(request []byte, batch bool) (*model.Operation, error) {
	req := &model.CreateRequest{}
	if err := json.Unmarshal(request, req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal create request: %s", err.Error())
	}

	if err := p.ValidateSuffixData(req.SuffixData); err != nil {
		return nil, err
	}

	if !batch {
		if err := p.validateInitialDelta(req); err != nil {
			return nil, err
		}
	}

	suffix, err := model.GetUniqueSuffix(req.SuffixData, p.MultihashAlgorithms)
	if err != nil {
		return nil, err
	}

	return &model.Operation{
		Type:             operation.TypeCreate,
		UniqueSuffix:     suffix,
		OperationRequest: request,
		SuffixData:       req.SuffixData,
		Delta:            req.Delta,
	}, nil
}

// validateInitialDelta checks the delta against the hash committed to in the suffix data.
func (p *Parser) validateInitialDelta(req *model.CreateRequest) error {
	if err := p.ValidateDelta(req.Delta); err != nil {
		return err
	}

	if err := hashing.IsValidModelMultihash(req.Delta, req.SuffixData.DeltaHash); err != nil {
		return fmt.Errorf("delta doesn't match suffix data delta hash: %s", err.Error())
	}

	if req.Delta.UpdateCommitment == req.SuffixData.RecoveryCommitment {
		return errors.New("recovery and update commitments cannot be equal: the same key may not be used for both")
	}

	return nil
}

// ValidateDelta checks the patches against the enabled patch actions and the delta against the size
// and hash limits.
func (p *Parser) ValidateDelta(delta *model.DeltaModel) error {
	if delta == nil {
		return errors.New("missing delta")
	}

	if len(delta.Patches) == 0 {
		return errors.New("missing patches")
	}

	for _, ptch := range delta.Patches {
		if action := ptch.GetAction(); !p.patchEnabled(action) {
			return fmt.Errorf("%s patch action is not enabled", action)
		}

		if err := ptch.Validate(); err != nil {
			return err
		}
	}

	if err := p.validateMultihash(delta.UpdateCommitment, "update commitment"); err != nil {
		return err
	}

	canonical, err := canonicalizer.MarshalCanonical(delta)
	if err != nil {
		return fmt.Errorf("canonicalize delta: %s", err.Error())
	}

	if uint(len(canonical)) > p.MaxDeltaSize {
		return fmt.Errorf("delta size[%d] exceeds maximum delta size[%d]", len(canonical), p.MaxDeltaSize)
	}

	return nil
}

// ValidateSuffixData checks that both suffix data hashes are present and computed with an allowed algorithm.
func (p *Parser) ValidateSuffixData(suffixData *model.SuffixDataModel) error {
	if suffixData == nil {
		return errors.New("missing suffix data")
	}

	if err := p.validateMultihash(suffixData.RecoveryCommitment, "recovery commitment"); err != nil {
		return err
	}

	return p.validateMultihash(suffixData.DeltaHash, "delta hash")
}

func (p *Parser) validateMultihash(mh, name string) error {
	switch {
	case mh == "":
		return fmt.Errorf("missing %s", name)
	case uint(len(mh)) > p.MaxOperationHashLength:
		return fmt.Errorf("%s length[%d] exceeds maximum hash length[%d]", name, len(mh), p.MaxOperationHashLength)
	case !hashing.IsComputedUsingMultihashAlgorithms(mh, p.MultihashAlgorithms):
		return fmt.Errorf("%s is not computed with the required hash algorithms: %d", name, p.MultihashAlgorithms)
	default:
		return nil
	}
}

func (p *Parser) patchEnabled(action patch.Action) bool {
	for _, enabled := range p.Patches {
		if patch.Action(enabled) == action {
			return true
		}
	}

	return false
}
