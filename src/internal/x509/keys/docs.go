// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509keys resolves usable key descriptors from certificates and
// private key material.
//
// A [KeyDescriptor] is a tagged variant: its Kind selects how Data and Params
// are interpreted, and conversion into Go crypto keys switches on that tag.
// Public keys come from a certificate's SubjectPublicKeyInfo. Signing keys are
// either self-describing PEM encodings ([EncodedKey]) or raw key material
// ([RawKey]) whose algorithm is taken from the end-entity certificate of the
// accompanying chain.
package x509keys
