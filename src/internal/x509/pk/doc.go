// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package pk implements the hash and signature primitives behind chain and
// payment signature checks: RSA PKCS#1 v1.5, DSA and ECDSA, each paired with
// one of the registry hash kinds.
//
// Signatures for DSA and ECDSA are DER encoded SEQUENCE { r, s } values.
// MD2 (RFC 1319) is implemented locally since neither the standard library
// nor x/crypto ship it; MD4 comes from x/crypto.
package pk
