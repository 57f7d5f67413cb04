// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509trust holds the set of trusted root fingerprints consulted by
// chain verification.
//
// A fingerprint is the lowercase hex SHA-256 of a certificate's DER
// encoding. The store only grows: entries are added from certificates
// (PEM, DER or PKCS#7 bundles) or directly as fingerprints, and a flag
// lets callers accept chains that reach no trusted certificate.
//
// Every mutation is validated in full before the store is touched, so a
// failed call leaves it unchanged and concurrent readers never observe a
// partially applied batch.
package x509trust
