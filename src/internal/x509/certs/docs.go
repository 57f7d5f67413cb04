// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs decodes [X.509] certificates into the immutable model used
// by the payment chain verifier. Decoding is done with [cryptobyte] so that the
// exact to-be-signed byte range is preserved, and so that certificates using
// algorithms the standard library refuses (DSA, MD2, MD4) still decode.
//
// It also handles [PEM] text, concatenated DER and [PKCS7] bundles, which the
// trust store uses to ingest operator-supplied roots.
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
// [cryptobyte]: https://pkg.go.dev/golang.org/x/crypto/cryptobyte
package x509certs
