/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardFields(t *testing.T) {
	const module = "test_fields"

	t.Run("json fields", func(t *testing.T) {
		stdOut := &bytes.Buffer{}

		logger := New(module, WithStdOut(stdOut), WithEncoding(JSON))

		logger.Info("Some message",
			WithAddress("QmAddr"), WithAnchoredAt(12), WithAttempt(2), WithBackoff(time.Second),
			WithBatchHash("QmBatch"), WithCommitment("commit1"), WithDeactivated(true),
			WithDocument(map[string]interface{}{"field1": 1234}), WithID("did:sidetree:abc"),
			WithMaxSize(20), WithMethod("GET"), WithNamespace("did:sidetree"), WithOperationID("op1"),
			WithOperationType("create"), WithPath("/operations"), WithProtocolVersion(100),
			WithReason("duplicate"), WithRequestBody([]byte("request body")), WithSince(3),
			WithSize(1234), WithStatus(202), WithSuffix("abc"), WithSuffixes("s1", "s2"),
			WithTotal(5), WithTotalPending(7), WithURIString("http://localhost:5001"), WithVersion("v1"),
			WithError(errors.New("some error")),
		)

		l := unmarshalLogData(t, stdOut.Bytes())

		require.Equal(t, "Some message", l.Msg)
		require.Equal(t, "QmAddr", l.Address)
		require.Equal(t, 12, l.AnchoredAt)
		require.Equal(t, 2, l.Attempt)
		require.Equal(t, "QmBatch", l.BatchHash)
		require.Equal(t, "commit1", l.Commitment)
		require.True(t, l.Deactivated)
		require.Equal(t, `{"field1":1234}`, l.Document)
		require.Equal(t, "did:sidetree:abc", l.ID)
		require.Equal(t, 20, l.MaxSize)
		require.Equal(t, "GET", l.Method)
		require.Equal(t, "did:sidetree", l.Namespace)
		require.Equal(t, "op1", l.OperationID)
		require.Equal(t, "create", l.OperationType)
		require.Equal(t, "/operations", l.Path)
		require.Equal(t, uint64(100), l.ProtocolVersion)
		require.Equal(t, "duplicate", l.Reason)
		require.Equal(t, "request body", l.RequestBody)
		require.Equal(t, 3, l.Since)
		require.Equal(t, 1234, l.Size)
		require.Equal(t, 202, l.Status)
		require.Equal(t, "abc", l.Suffix)
		require.Equal(t, []string{"s1", "s2"}, l.Suffixes)
		require.Equal(t, 5, l.Total)
		require.Equal(t, 7, l.TotalPending)
		require.Equal(t, "http://localhost:5001", l.URI)
		require.Equal(t, "v1", l.Version)
		require.Equal(t, "some error", l.Error)
	})
}

func TestLevels(t *testing.T) {
	const module = "test_levels"

	stdOut := &bytes.Buffer{}

	logger := New(module, WithStdOut(stdOut))

	SetLevel(module, WARNING)
	require.Equal(t, WARNING, GetLevel(module))
	require.False(t, logger.IsEnabled(INFO))
	require.True(t, logger.IsEnabled(ERROR))

	logger.Info("not logged")
	require.Empty(t, stdOut.String())

	logger.Warn("logged")
	require.Contains(t, stdOut.String(), "logged")

	SetLevel(module, DEBUG)
	require.True(t, logger.IsEnabled(DEBUG))
}

func TestSpec(t *testing.T) {
	require.NoError(t, SetSpec("speca=debug:specb=warn:error"))

	require.Equal(t, DEBUG, GetLevel("speca"))
	require.Equal(t, WARNING, GetLevel("specb"))
	require.Equal(t, ERROR, GetLevel("unknown"))

	spec := GetSpec()
	require.Contains(t, spec, "speca=DEBUG")
	require.Contains(t, spec, "specb=WARNING")
	require.Contains(t, spec, ":ERROR")

	require.Error(t, SetSpec("speca=loud"))
	require.Error(t, SetSpec("a=b=c"))

	SetDefaultLevel(INFO)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("critical")
	require.NoError(t, err)
	require.Equal(t, FATAL, l)

	_, err = ParseLevel("verbose")
	require.Error(t, err)

	require.Equal(t, "Level(42)", Level(42).String())
}

type logData struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`

	Address         string   `json:"address"`
	AnchoredAt      int      `json:"anchoredAt"`
	Attempt         int      `json:"attempt"`
	BatchHash       string   `json:"batchHash"`
	Commitment      string   `json:"commitment"`
	Deactivated     bool     `json:"deactivated"`
	Document        string   `json:"document"`
	ID              string   `json:"id"`
	MaxSize         int      `json:"maxSize"`
	Method          string   `json:"method"`
	Namespace       string   `json:"namespace"`
	OperationID     string   `json:"operationID"`
	OperationType   string   `json:"operationType"`
	Path            string   `json:"path"`
	ProtocolVersion uint64   `json:"protocolVersion"`
	Reason          string   `json:"reason"`
	RequestBody     string   `json:"requestBody"`
	Since           int      `json:"since"`
	Size            int      `json:"size"`
	Status          int      `json:"status"`
	Suffix          string   `json:"suffix"`
	Suffixes        []string `json:"suffixes"`
	Total           int      `json:"total"`
	TotalPending    int      `json:"totalPending"`
	URI             string   `json:"uri"`
	Version         string   `json:"version"`
	Error           string   `json:"error"`
}

func unmarshalLogData(t *testing.T, b []byte) *logData {
	t.Helper()

	l := &logData{}

	require.NoError(t, json.Unmarshal(b, l))

	return l
}
