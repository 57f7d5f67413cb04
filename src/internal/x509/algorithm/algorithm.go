// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509alg

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownAlgorithm indicates that a key or signature OID is not in the registry,
	// or that a signature OID only names a bare key type.
	ErrUnknownAlgorithm = errors.New("x509alg: unknown algorithm")

	// ErrUnknownCurve indicates that a named-curve OID is not supported.
	ErrUnknownCurve = errors.New("x509alg: unknown curve")

	// ErrUnknownHash indicates that a hash name could not be parsed.
	ErrUnknownHash = errors.New("x509alg: unknown hash")
)

// KeyKind identifies the public-key algorithm family.
type KeyKind int

const (
	// KeyUnknown is the zero value and never appears in the registry.
	KeyUnknown KeyKind = iota
	// KeyRSA is RSA (PKCS#1).
	KeyRSA
	// KeyDSA is DSA (FIPS 186).
	KeyDSA
	// KeyECDSA is ECDSA (ANSI X9.62).
	KeyECDSA
)

// String returns the lowercase algorithm name.
func (k KeyKind) String() string {
	switch k {
	case KeyRSA:
		return "rsa"
	case KeyDSA:
		return "dsa"
	case KeyECDSA:
		return "ecdsa"
	default:
		return "unknown"
	}
}

// HashKind identifies the digest paired with a signature scheme.
type HashKind int

const (
	// HashNone marks an OID that designates a bare key rather than a signature scheme.
	HashNone HashKind = iota
	HashMD2
	HashMD4
	HashMD5
	HashSHA1
	HashSHA224
	HashSHA256
	HashSHA384
	HashSHA512
)

var hashNames = [...]string{
	HashNone:   "none",
	HashMD2:    "md2",
	HashMD4:    "md4",
	HashMD5:    "md5",
	HashSHA1:   "sha1",
	HashSHA224: "sha224",
	HashSHA256: "sha256",
	HashSHA384: "sha384",
	HashSHA512: "sha512",
}

// String returns the lowercase hash name.
func (h HashKind) String() string {
	if h < 0 || int(h) >= len(hashNames) {
		return "unknown"
	}
	return hashNames[h]
}

// ParseHashKind parses a hash name such as "sha256" or "SHA-256".
// The bare "none" kind is rejected since it cannot drive a signature.
func ParseHashKind(name string) (HashKind, error) {
	n := strings.ToLower(strings.ReplaceAll(name, "-", ""))
	for i, s := range hashNames {
		if i != int(HashNone) && s == n {
			return HashKind(i), nil
		}
	}
	return HashNone, fmt.Errorf("%w: %q", ErrUnknownHash, name)
}

// Curve names an elliptic curve supported for ECDSA keys.
type Curve string

const (
	CurveP224 Curve = "p224"
	CurveP256 Curve = "p256"
	CurveP384 Curve = "p384"
	CurveP521 Curve = "p521"
)

// Descriptor pairs a key kind with the hash used by a signature scheme.
// Hash is HashNone for OIDs that only identify a key type.
type Descriptor struct {
	Key  KeyKind
	Hash HashKind
}

// String renders the descriptor as "key/hash".
func (d Descriptor) String() string { return d.Key.String() + "/" + d.Hash.String() }

// oids maps dotted-decimal algorithm OIDs to their descriptors.
//
// See RFC 2459, RFC 3279 and the 1.2.840.10040.4, 1.2.840.113549.1.1 and
// 1.2.840.10045.4.3 arcs.
var oids = map[string]Descriptor{
	"1.2.840.10040.4.1":     {KeyDSA, HashNone},
	"1.2.840.10040.4.2":     {KeyDSA, HashNone},
	"1.2.840.10040.4.3":     {KeyDSA, HashSHA1},
	"1.2.840.113549.1.1.1":  {KeyRSA, HashNone},
	"1.2.840.113549.1.1.2":  {KeyRSA, HashMD2},
	"1.2.840.113549.1.1.3":  {KeyRSA, HashMD4},
	"1.2.840.113549.1.1.4":  {KeyRSA, HashMD5},
	"1.2.840.113549.1.1.5":  {KeyRSA, HashSHA1},
	"1.2.840.113549.1.1.11": {KeyRSA, HashSHA256},
	"1.2.840.113549.1.1.12": {KeyRSA, HashSHA384},
	"1.2.840.113549.1.1.13": {KeyRSA, HashSHA512},
	"1.2.840.113549.1.1.14": {KeyRSA, HashSHA224},
	"1.2.840.10045.2.1":     {KeyECDSA, HashNone},
	"1.2.840.10045.4.1":     {KeyECDSA, HashSHA1},
	"1.2.840.10045.4.3.1":   {KeyECDSA, HashSHA224},
	"1.2.840.10045.4.3.2":   {KeyECDSA, HashSHA256},
	"1.2.840.10045.4.3.3":   {KeyECDSA, HashSHA384},
	"1.2.840.10045.4.3.4":   {KeyECDSA, HashSHA512},
}

// curves maps named-curve OIDs to curves.
var curves = map[string]Curve{
	"1.3.132.0.33":        CurveP224,
	"1.2.840.10045.3.1.7": CurveP256,
	"1.3.132.0.34":        CurveP384,
	"1.3.132.0.35":        CurveP521,
}

// LookupByKeyOID returns the descriptor for a subject public key algorithm OID.
//
// Parameters:
//   - oid: Dotted-decimal OID from SubjectPublicKeyInfo.algorithm
//
// Returns:
//   - Descriptor: Registry entry (Hash may be HashNone)
//   - error: ErrUnknownAlgorithm if the OID is absent
func LookupByKeyOID(oid string) (Descriptor, error) {
	d, ok := oids[oid]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: key %s", ErrUnknownAlgorithm, oid)
	}
	return d, nil
}

// LookupBySigOID returns the descriptor for a signature algorithm OID.
//
// An OID that only names a bare key (Hash == HashNone) is rejected.
//
// Parameters:
//   - oid: Dotted-decimal OID from Certificate.signatureAlgorithm
//
// Returns:
//   - Descriptor: Registry entry with a concrete hash kind
//   - error: ErrUnknownAlgorithm if the OID is absent or carries no hash
func LookupBySigOID(oid string) (Descriptor, error) {
	d, ok := oids[oid]
	if !ok || d.Hash == HashNone {
		return Descriptor{}, fmt.Errorf("%w: signature %s", ErrUnknownAlgorithm, oid)
	}
	return d, nil
}

// LookupCurve returns the curve for a named-curve OID.
func LookupCurve(oid string) (Curve, error) {
	c, ok := curves[oid]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCurve, oid)
	}
	return c, nil
}

// CurveOID returns the named-curve OID for c.
func CurveOID(c Curve) (string, bool) {
	for oid, v := range curves {
		if v == c {
			return oid, true
		}
	}
	return "", false
}
