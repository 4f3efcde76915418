/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protocolversion

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
)

// ErrNoVersion is returned when no protocol version is active at the requested anchor point.
var ErrNoVersion = errors.New("protocol version not found")

// Client is a table of protocol versions ordered by starting anchor point.
type Client struct {
	versions []protocol.Version
}

// NewClient returns a client for the given versions. Two versions may not start at the same anchor point.
func NewClient(versions ...protocol.Version) (*Client, error) {
	if len(versions) == 0 {
		return nil, errors.New("at least one protocol version is required")
	}

	sorted := append([]protocol.Version(nil), versions...)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Protocol().StartingAnchorPoint < sorted[j].Protocol().StartingAnchorPoint
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Protocol().StartingAnchorPoint == sorted[i-1].Protocol().StartingAnchorPoint {
			return nil, errors.Errorf("protocol versions %s and %s have the same starting anchor point %d",
				sorted[i-1].Version(), sorted[i].Version(), sorted[i].Protocol().StartingAnchorPoint)
		}
	}

	return &Client{versions: sorted}, nil
}

// Current returns the latest version of the protocol.
func (c *Client) Current() (protocol.Version, error) {
	return c.versions[len(c.versions)-1], nil
}

// Get returns the version active at the given anchor point: the one with the highest starting
// anchor point not after it.
func (c *Client) Get(anchoredAt uint64) (protocol.Version, error) {
	i := sort.Search(len(c.versions), func(i int) bool {
		return c.versions[i].Protocol().StartingAnchorPoint > anchoredAt
	})

	if i == 0 {
		return nil, errors.Wrapf(ErrNoVersion, "anchor point %d", anchoredAt)
	}

	return c.versions[i-1], nil
}

// Versions returns all versions in ascending order of starting anchor point.
func (c *Client) Versions() []protocol.Version {
	return append([]protocol.Version(nil), c.versions...)
}
