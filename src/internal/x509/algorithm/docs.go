// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509alg holds the fixed algorithm tables used by the payment
// certificate chain verifier. It maps key and signature algorithm [OID]s to
// descriptors pairing a key kind (RSA, DSA, ECDSA) with a hash kind, and maps
// named-curve OIDs to the curves supported for ECDSA.
//
// The tables mirror the [PKCS#1] and ANSI X9.62 assignments and are never
// mutated after package initialization, so every lookup is safe for
// concurrent use.
//
// [OID]: https://grokipedia.com/page/Object_identifier
// [PKCS#1]: https://www.rfc-editor.org/rfc/rfc8017
package x509alg
