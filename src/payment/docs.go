// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package payment signs and verifies payment request payloads with the
// end-entity key of a certificate chain.
//
// Sign and Verify operate on the leaf certificate only and never look at
// the rest of the chain; a successful Verify does not mean the chain is
// trusted. Callers that need both use a Verifier:
//
//	store, _ := x509trust.New(x509trust.WithFingerprints(roots...))
//	v := payment.NewVerifier(x509chain.New(store))
//	if err := v.VerifyRequest(x509alg.HashSHA256, serialized, sig, chain); err != nil {
//		// reject the request
//	}
//
// Chains are raw DER certificates ordered leaf first.
package payment
