// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain verifies payment certificate chains against a trust store.
//
// A chain is ordered leaf first. Verification runs four stages and stops at
// the first failure:
//   - every certificate decodes
//   - every certificate is strictly inside its validity window
//   - every certificate is signed by the one after it
//   - at least one certificate (at any position) is trusted, unless the
//     store allows untrusted chains
//
// This is deliberately narrower than [X.509] path validation: names, key
// usage, basic constraints and revocation are not examined.
//
// The package also renders chains for humans ([Report]) as a markdown table,
// an ASCII tree or JSON.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
