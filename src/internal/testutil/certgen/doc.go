// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package certgen builds throwaway certificate chains for tests.
//
// RSA and ECDSA certificates are produced with the standard library. DSA
// certificates, which crypto/x509 can no longer create, are assembled by hand
// with [cryptobyte].
//
// [cryptobyte]: https://pkg.go.dev/golang.org/x/crypto/cryptobyte
package certgen
