// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package metrics

import (
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const (
	// Namespace is the Prometheus namespace for all verifier metrics
	Namespace = "bip70_verifier"

	// Label names
	LabelOutcome   = "outcome"
	LabelOperation = "operation"
	LabelStatus    = "status"

	// Status values
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusError   = "error"

	// Operation names
	OpSign   = "sign"
	OpVerify = "verify"
)

var latencyBuckets = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1}

var (
	// ChainVerificationsTotal counts chain verifications by outcome
	// ("ok", "time", "signature", "untrusted", ...).
	ChainVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "chain_verifications_total",
			Help:      "Total number of certificate chain verifications by outcome",
		},
		[]string{LabelOutcome},
	)

	// ChainVerificationDuration tracks how long a chain verification took.
	ChainVerificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "chain_verification_duration_seconds",
			Help:      "Duration of certificate chain verifications in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{LabelOutcome},
	)

	// ChainLength tracks the number of certificates per verified chain.
	ChainLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "chain_length",
			Help:      "Number of certificates in verified chains",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	// SignatureOperationsTotal counts payment sign and verify operations.
	// Status is success, failure (signature did not verify) or error.
	SignatureOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "signature_operations_total",
			Help:      "Total number of payment signature operations by operation and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// SignatureOperationDuration tracks the duration of payment signature operations.
	SignatureOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "signature_operation_duration_seconds",
			Help:      "Duration of payment signature operations in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{LabelOperation},
	)

	// TrustedFingerprints reports the size of the trust store in use.
	TrustedFingerprints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "trusted_fingerprints",
			Help:      "Number of fingerprints in the active trust store",
		},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordChain records one chain verification.
func RecordChain(outcome string, length int, elapsed time.Duration) {
	if !enabled.Load() {
		return
	}
	ChainVerificationsTotal.WithLabelValues(outcome).Inc()
	ChainVerificationDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	ChainLength.Observe(float64(length))
}

// RecordSignature records one payment sign or verify operation.
func RecordSignature(operation, status string, elapsed time.Duration) {
	if !enabled.Load() {
		return
	}
	SignatureOperationsTotal.WithLabelValues(operation, status).Inc()
	SignatureOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetTrustedFingerprints sets the trust store size gauge.
func SetTrustedFingerprints(count int) {
	if !enabled.Load() {
		return
	}
	TrustedFingerprints.Set(float64(count))
}

// Enable turns metrics collection on.
func Enable() {
	enabled.Store(true)
}

// Disable turns metrics collection off.
// Collectors stay registered but stop receiving observations.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}

// Recorder forwards observations from the chain validator and the payment
// facade to the package collectors.
type Recorder struct{}

// NewRecorder returns a Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// ObserveChain implements the chain validator's recorder.
func (*Recorder) ObserveChain(outcome string, length int, elapsed time.Duration) {
	RecordChain(outcome, length, elapsed)
}

// ObserveSignature implements the payment recorder.
func (*Recorder) ObserveSignature(operation, status string, elapsed time.Duration) {
	RecordSignature(operation, status, elapsed)
}

// WriteText writes every collector of this package registered with g in the
// Prometheus text exposition format. A nil g means the default gatherer.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
