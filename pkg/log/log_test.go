/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultLevel(t *testing.T) {
	SetDefaultLevel(ERROR)
	defer SetDefaultLevel(INFO)

	require.Equal(t, ERROR, GetLevel("moduley"))
}

func TestSetLevel(t *testing.T) {
	SetLevel("modulex", PANIC)

	require.Equal(t, PANIC, GetLevel("modulex"))
}

func TestSetSpec(t *testing.T) {
	require.NoError(t, SetSpec("modulea=debug:moduleb=panic:error"))
	defer SetDefaultLevel(INFO)

	require.Contains(t, GetSpec(), "modulea=DEBUG")
	require.Contains(t, GetSpec(), "moduleb=PANIC")
	require.Contains(t, GetSpec(), ":ERROR")

	require.Equal(t, DEBUG, GetLevel("modulea"))
	require.Equal(t, PANIC, GetLevel("moduleb"))
	require.Equal(t, ERROR, GetLevel(""))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("Warning")
	require.NoError(t, err)
	require.Equal(t, WARNING, level)

	_, err = ParseLevel("noisy")
	require.Error(t, err)
}

func TestParseSpec(t *testing.T) {
	levels, err := ParseSpec("modulec=warning:info")
	require.NoError(t, err)
	require.Equal(t, WARNING, levels["modulec"])
	require.Equal(t, INFO, levels[""])
	require.NotEqual(t, WARNING, GetLevel("modulec"), "parsing doesn't apply the spec")

	_, err = ParseSpec("modulec=loud")
	require.Error(t, err)

	_, err = ParseSpec("a=b=c")
	require.Error(t, err)
}
