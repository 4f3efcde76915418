/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log Fields.
const (
	FieldAddress         = "address"
	FieldAnchoredAt      = "anchoredAt"
	FieldAttempt         = "attempt"
	FieldBackoff         = "backoff"
	FieldBatchHash       = "batchHash"
	FieldCommitment      = "commitment"
	FieldDeactivated     = "deactivated"
	FieldDocument        = "document"
	FieldDuration        = "duration"
	FieldID              = "id"
	FieldMaxSize         = "maxSize"
	FieldMethod          = "method"
	FieldNamespace       = "namespace"
	FieldOperationID     = "operationID"
	FieldOperationType   = "operationType"
	FieldPath            = "path"
	FieldProtocolVersion = "protocolVersion"
	FieldReason          = "reason"
	FieldRequestBody     = "requestBody"
	FieldSince           = "since"
	FieldSize            = "size"
	FieldStatus          = "status"
	FieldSuffix          = "suffix"
	FieldSuffixes        = "suffixes"
	FieldTimeout         = "timeout"
	FieldTotal           = "total"
	FieldTotalPending    = "totalPending"
	FieldURI             = "uri"
	FieldVersion         = "version"
)

// WithAddress sets the address field.
func WithAddress(value string) zap.Field {
	return zap.String(FieldAddress, value)
}

// WithAnchoredAt sets the anchored-at field.
func WithAnchoredAt(value uint64) zap.Field {
	return zap.Uint64(FieldAnchoredAt, value)
}

// WithAttempt sets the attempt field.
func WithAttempt(value int) zap.Field {
	return zap.Int(FieldAttempt, value)
}

// WithBackoff sets the backoff field.
func WithBackoff(value time.Duration) zap.Field {
	return zap.Duration(FieldBackoff, value)
}

// WithBatchHash sets the batch-hash field.
func WithBatchHash(value string) zap.Field {
	return zap.String(FieldBatchHash, value)
}

// WithCommitment sets the commitment field.
func WithCommitment(value string) zap.Field {
	return zap.String(FieldCommitment, value)
}

// WithDeactivated sets the deactivated field.
func WithDeactivated(value bool) zap.Field {
	return zap.Bool(FieldDeactivated, value)
}

// WithDocument sets the document field.
func WithDocument(value map[string]interface{}) zap.Field {
	return zap.Inline(newJSONMarshaller(FieldDocument, value))
}

// WithDuration sets the duration field.
func WithDuration(value time.Duration) zap.Field {
	return zap.Duration(FieldDuration, value)
}

// WithID sets the id field.
func WithID(value string) zap.Field {
	return zap.String(FieldID, value)
}

// WithMaxSize sets the max-size field.
func WithMaxSize(value int) zap.Field {
	return zap.Int(FieldMaxSize, value)
}

// WithMethod sets the method field.
func WithMethod(value string) zap.Field {
	return zap.String(FieldMethod, value)
}

// WithNamespace sets the namespace field.
func WithNamespace(value string) zap.Field {
	return zap.String(FieldNamespace, value)
}

// WithOperationID sets the operation-id field.
func WithOperationID(value string) zap.Field {
	return zap.String(FieldOperationID, value)
}

// WithOperationType sets the operation-type field.
func WithOperationType(value string) zap.Field {
	return zap.String(FieldOperationType, value)
}

// WithPath sets the path field.
func WithPath(value string) zap.Field {
	return zap.String(FieldPath, value)
}

// WithProtocolVersion sets the protocol-version field.
func WithProtocolVersion(value uint64) zap.Field {
	return zap.Uint64(FieldProtocolVersion, value)
}

// WithReason sets the reason field.
func WithReason(value string) zap.Field {
	return zap.String(FieldReason, value)
}

// WithRequestBody sets the request-body field.
func WithRequestBody(value []byte) zap.Field {
	return zap.String(FieldRequestBody, string(value))
}

// WithSince sets the since field.
func WithSince(value uint64) zap.Field {
	return zap.Uint64(FieldSince, value)
}

// WithSize sets the size field.
func WithSize(value int) zap.Field {
	return zap.Int(FieldSize, value)
}

// WithStatus sets the status field.
func WithStatus(value int) zap.Field {
	return zap.Int(FieldStatus, value)
}

// WithSuffix sets the suffix field.
func WithSuffix(value string) zap.Field {
	return zap.String(FieldSuffix, value)
}

// WithSuffixes sets the suffixes field.
func WithSuffixes(value ...string) zap.Field {
	return zap.Array(FieldSuffixes, NewStringArrayMarshaller(value))
}

// WithTimeout sets the timeout field.
func WithTimeout(value time.Duration) zap.Field {
	return zap.Duration(FieldTimeout, value)
}

// WithTotal sets the total field.
func WithTotal(value int) zap.Field {
	return zap.Int(FieldTotal, value)
}

// WithTotalPending sets the total-pending field.
func WithTotalPending(value uint) zap.Field {
	return zap.Uint(FieldTotalPending, value)
}

// WithURIString sets the uri field.
func WithURIString(value string) zap.Field {
	return zap.String(FieldURI, value)
}

// WithVersion sets the version field.
func WithVersion(value string) zap.Field {
	return zap.String(FieldVersion, value)
}

// WithError sets the error field.
func WithError(err error) zap.Field {
	return zap.Error(err)
}

type jsonMarshaller struct {
	key string
	obj interface{}
}

func newJSONMarshaller(key string, value interface{}) *jsonMarshaller {
	return &jsonMarshaller{key: key, obj: value}
}

func (m *jsonMarshaller) MarshalLogObject(e zapcore.ObjectEncoder) error {
	b, err := json.Marshal(m.obj)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	e.AddString(m.key, string(b))

	return nil
}

// StringArrayMarshaller marshals an array of strings into a log field.
type StringArrayMarshaller struct {
	values []string
}

// NewStringArrayMarshaller returns a new StringArrayMarshaller.
func NewStringArrayMarshaller(values []string) *StringArrayMarshaller {
	return &StringArrayMarshaller{values: values}
}

// MarshalLogArray marshals the array.
func (m *StringArrayMarshaller) MarshalLogArray(e zapcore.ArrayEncoder) error {
	for _, v := range m.values {
		e.AppendString(v)
	}

	return nil
}
