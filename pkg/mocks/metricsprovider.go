/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import "time"

// MetricsProvider implements a mock metrics provider.
type MetricsProvider struct{}

// OperationSubmitted records a submission outcome.
func (m *MetricsProvider) OperationSubmitted(status, reason string) {
}

// PendingOperations records the number of queued operations.
func (m *MetricsProvider) PendingOperations(count uint) {
}

// BatchCut records the size of a cut batch.
func (m *MetricsProvider) BatchCut(size uint) {
}

// BatchWriteTime records the time to write and anchor a batch.
func (m *MetricsProvider) BatchWriteTime(value time.Duration) {
}

// BatchWriteFailed records a failed batch write.
func (m *MetricsProvider) BatchWriteFailed() {
}

// AnchorProcessed records an observed anchor.
func (m *MetricsProvider) AnchorProcessed(anchoredAt uint64) {
}

// ResolveTime records the time to resolve a document.
func (m *MetricsProvider) ResolveTime(value time.Duration) {
}

// ResolutionCacheHit records a resolution cache lookup.
func (m *MetricsProvider) ResolutionCacheHit(hit bool) {
}

// IntegrityAnomaly records an operation or batch skipped during resolution.
func (m *MetricsProvider) IntegrityAnomaly(kind string) {
}

// HTTPRequest records a served HTTP request.
func (m *MetricsProvider) HTTPRequest(method, path string, status int, value time.Duration) {
}

// CASWriteSize records the size of content written to CAS.
func (m *MetricsProvider) CASWriteSize(dataType string, size int) {
}
