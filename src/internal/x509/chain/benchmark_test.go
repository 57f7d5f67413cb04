// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"crypto"
	"testing"

	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/testutil/certgen"
	x509chain "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/chain"
	x509trust "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/trust"
)

func benchmarkChain(b *testing.B, keygen func(testing.TB) crypto.Signer) {
	leaf, intermediate, root := certgen.Chain(b, keygen, certgen.Current())
	store, err := x509trust.New()
	if err != nil {
		b.Fatal(err)
	}
	if err := store.AddCertificates(root.DER); err != nil {
		b.Fatal(err)
	}
	v := x509chain.New(store)
	raw := certgen.Raw(leaf, intermediate, root)

	b.ReportAllocs()
	for b.Loop() {
		if err := v.VerifyChain(raw); err != nil {
			b.Fatalf("VerifyChain() error = %v", err)
		}
	}
}

func BenchmarkVerifyChain_ECDSA(b *testing.B) { benchmarkChain(b, certgen.ECDSAKeygen) }

func BenchmarkVerifyChain_RSA(b *testing.B) { benchmarkChain(b, certgen.RSAKeygen) }

func BenchmarkVerifyChain_Concurrent(b *testing.B) {
	leaf, intermediate, root := certgen.Chain(b, certgen.ECDSAKeygen, certgen.Current())
	store, err := x509trust.New(x509trust.WithAllowUntrusted(true))
	if err != nil {
		b.Fatal(err)
	}
	v := x509chain.New(store)
	raw := certgen.Raw(leaf, intermediate, root)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := v.VerifyChain(raw); err != nil {
				b.Fatalf("VerifyChain() error = %v", err)
			}
		}
	})
}
