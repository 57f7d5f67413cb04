// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package metrics provides Prometheus instrumentation for chain verification
// and payment signing.
//
// Collectors are registered with the default Prometheus registry on import.
// Recording can be switched off at runtime with Disable, in which case every
// Record function and the Recorder become no-ops.
//
// A Recorder satisfies both the chain validator's and the payment package's
// recorder interfaces, so one value can be handed to each:
//
//	rec := metrics.NewRecorder()
//	validator := x509chain.New(store, x509chain.WithRecorder(rec))
//	verifier := payment.NewVerifier(validator, payment.WithRecorder(rec))
//
// WriteText dumps the collectors of this package in the Prometheus text
// exposition format, which is how the CLI reports them.
package metrics
