// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetAll() {
	ChainVerificationsTotal.Reset()
	ChainVerificationDuration.Reset()
	SignatureOperationsTotal.Reset()
	SignatureOperationDuration.Reset()
	TrustedFingerprints.Set(0)
}

func TestMetricsEnabled(t *testing.T) {
	assert.True(t, IsEnabled(), "metrics should be enabled by default")

	Disable()
	assert.False(t, IsEnabled())

	Enable()
	assert.True(t, IsEnabled())
}

func TestRecordChain(t *testing.T) {
	Enable()
	resetAll()

	RecordChain("ok", 3, 2*time.Millisecond)
	RecordChain("ok", 2, time.Millisecond)
	RecordChain("untrusted", 2, time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(ChainVerificationsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(ChainVerificationsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ChainVerificationsTotal.WithLabelValues("untrusted")))
	assert.Equal(t, 2, testutil.CollectAndCount(ChainVerificationDuration))
}

func TestRecordSignature(t *testing.T) {
	Enable()
	resetAll()

	RecordSignature(OpSign, StatusSuccess, time.Millisecond)
	RecordSignature(OpVerify, StatusFailure, time.Millisecond)
	RecordSignature(OpVerify, StatusError, time.Millisecond)

	assert.Equal(t, 3, testutil.CollectAndCount(SignatureOperationsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(SignatureOperationsTotal.WithLabelValues(OpVerify, StatusFailure)))
	assert.Equal(t, 2, testutil.CollectAndCount(SignatureOperationDuration))
}

func TestDisabledRecordsNothing(t *testing.T) {
	resetAll()
	Disable()
	defer Enable()

	RecordChain("ok", 1, time.Millisecond)
	RecordSignature(OpSign, StatusSuccess, time.Millisecond)
	SetTrustedFingerprints(42)

	assert.Equal(t, 0, testutil.CollectAndCount(ChainVerificationsTotal))
	assert.Equal(t, 0, testutil.CollectAndCount(SignatureOperationsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(TrustedFingerprints))
}

func TestRecorder(t *testing.T) {
	Enable()
	resetAll()

	rec := NewRecorder()
	rec.ObserveChain("signature", 2, time.Millisecond)
	rec.ObserveSignature(OpVerify, StatusSuccess, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(ChainVerificationsTotal.WithLabelValues("signature")))
	assert.Equal(t, 1.0, testutil.ToFloat64(SignatureOperationsTotal.WithLabelValues(OpVerify, StatusSuccess)))
}

func TestSetTrustedFingerprints(t *testing.T) {
	Enable()
	resetAll()

	SetTrustedFingerprints(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(TrustedFingerprints))
}

func TestWriteText(t *testing.T) {
	Enable()
	resetAll()

	RecordChain("ok", 2, time.Millisecond)
	SetTrustedFingerprints(3)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, nil))

	out := buf.String()
	assert.Contains(t, out, `bip70_verifier_chain_verifications_total{outcome="ok"} 1`)
	assert.Contains(t, out, "bip70_verifier_trusted_fingerprints 3")
	assert.Contains(t, out, "bip70_verifier_chain_length_bucket")
	assert.NotContains(t, out, "go_goroutines")
}
