// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pk

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509keys "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/keys"
)

// legacyDigestInfo holds the DER DigestInfo prefixes of hashes crypto/rsa
// does not know: MD2 (1.2.840.113549.2.2) and MD4 (1.2.840.113549.2.4).
var legacyDigestInfo = map[x509alg.HashKind][]byte{
	x509alg.HashMD2: {0x30, 0x20, 0x30, 0x0c, 0x06, 0x08, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x02, 0x02, 0x05, 0x00, 0x04, 0x10},
	x509alg.HashMD4: {0x30, 0x20, 0x30, 0x0c, 0x06, 0x08, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x02, 0x04, 0x05, 0x00, 0x04, 0x10},
}

// Rand is the entropy source for signing.
var Rand io.Reader = rand.Reader

// Verify checks sig over msg with the public key described by key.
//
// Parameters:
//   - hash: Digest paired with the signature scheme
//   - msg: Signed message (hashed here)
//   - sig: Signature; DER SEQUENCE { r, s } for DSA and ECDSA
//   - key: Public key descriptor
//
// Returns:
//   - bool: true if the signature is valid
//   - error: Non-nil when the check could not run (unusable key or hash);
//     a well-formed but wrong signature is reported as false, nil
func Verify(hash x509alg.HashKind, msg, sig []byte, key *x509keys.KeyDescriptor) (bool, error) {
	pub, err := key.PublicKey()
	if err != nil {
		return false, err
	}
	digest, err := Digest(hash, msg)
	if err != nil {
		return false, err
	}

	switch key.Kind {
	case x509alg.KeyRSA:
		rsaKey := pub.(*rsa.PublicKey)
		if prefix, ok := legacyDigestInfo[hash]; ok {
			return rsa.VerifyPKCS1v15(rsaKey, 0, withPrefix(prefix, digest), sig) == nil, nil
		}
		return rsa.VerifyPKCS1v15(rsaKey, cryptoHashes[hash], digest, sig) == nil, nil

	case x509alg.KeyDSA:
		dsaKey := pub.(*dsa.PublicKey)
		r, s, ok := parseRS(sig)
		if !ok {
			return false, nil
		}
		return dsa.Verify(dsaKey, truncate(digest, dsaKey.Q), r, s), nil

	case x509alg.KeyECDSA:
		return ecdsa.VerifyASN1(pub.(*ecdsa.PublicKey), digest, sig), nil

	default:
		return false, fmt.Errorf("%w: %s", x509keys.ErrUnsupportedKeyType, key.Kind)
	}
}

// Sign signs msg with the private key described by key.
func Sign(hash x509alg.HashKind, msg []byte, key *x509keys.KeyDescriptor) ([]byte, error) {
	priv, err := key.PrivateKey()
	if err != nil {
		return nil, err
	}
	digest, err := Digest(hash, msg)
	if err != nil {
		return nil, err
	}

	switch key.Kind {
	case x509alg.KeyRSA:
		rsaKey := priv.(*rsa.PrivateKey)
		if prefix, ok := legacyDigestInfo[hash]; ok {
			return rsa.SignPKCS1v15(Rand, rsaKey, 0, withPrefix(prefix, digest))
		}
		return rsa.SignPKCS1v15(Rand, rsaKey, cryptoHashes[hash], digest)

	case x509alg.KeyDSA:
		dsaKey := priv.(*dsa.PrivateKey)
		r, s, err := dsa.Sign(Rand, dsaKey, truncate(digest, dsaKey.Q))
		if err != nil {
			return nil, err
		}
		var b cryptobyte.Builder
		b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1BigInt(r)
			b.AddASN1BigInt(s)
		})
		return b.Bytes()

	case x509alg.KeyECDSA:
		return ecdsa.SignASN1(Rand, priv.(*ecdsa.PrivateKey), digest)

	default:
		return nil, fmt.Errorf("%w: %s", x509keys.ErrUnsupportedKeyType, key.Kind)
	}
}

func withPrefix(prefix, digest []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(digest))
	out = append(out, prefix...)
	return append(out, digest...)
}

// truncate keeps the leftmost bytes of digest that fit the subgroup order,
// which dsa.Sign and dsa.Verify leave to the caller.
func truncate(digest []byte, q *big.Int) []byte {
	n := (q.BitLen() + 7) / 8
	if len(digest) > n {
		return digest[:n]
	}
	return digest
}

func parseRS(sig []byte) (*big.Int, *big.Int, bool) {
	r, s := new(big.Int), new(big.Int)
	input := cryptobyte.String(sig)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) || !input.Empty() ||
		!seq.ReadASN1Integer(r) || !seq.ReadASN1Integer(s) || !seq.Empty() {
		return nil, nil, false
	}
	return r, s, true
}
