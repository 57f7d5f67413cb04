// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509keys

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
)

// PrivateKeyInput is the signing key handed to ResolveSigningKey.
// It is either an EncodedKey or a RawKey.
type PrivateKeyInput interface {
	privateKeyInput()
}

// EncodedKey is a self-describing PEM encoded private key.
//
// Supported block types are "RSA PRIVATE KEY", "EC PRIVATE KEY",
// "DSA PRIVATE KEY", "PRIVATE KEY" and "ENCRYPTED PRIVATE KEY". Password is
// only used for encrypted PKCS#8.
type EncodedKey struct {
	PEM      string
	Password []byte
}

// RawKey is bare private key material. Its algorithm, curve and parameters
// are taken from the end-entity certificate of the chain.
//
// For RSA it is a PKCS#1 RSAPrivateKey, for DSA the private value x and for
// ECDSA the private scalar, both big-endian.
type RawKey []byte

func (EncodedKey) privateKeyInput() {}
func (RawKey) privateKeyInput()     {}

// PEM block types of self-describing keys, normalized to lowercase.
const (
	blockRSAPrivateKey       = "rsa private key"
	blockECPrivateKey        = "ec private key"
	blockDSAPrivateKey       = "dsa private key"
	blockPKCS8PrivateKey     = "private key"
	blockEncryptedPrivateKey = "encrypted private key"
)

// ResolveSigningKey resolves the key used to sign with chain's end-entity identity.
//
// Parameters:
//   - input: EncodedKey (used as-is, curve resolved from its own parameters) or
//     RawKey (algorithm inferred from chain[0])
//   - chain: Decoded chain, leaf first
//
// Returns:
//   - *KeyDescriptor: Private key descriptor
//   - error: ErrEmptyChain, x509certs.ErrParse, ErrMissingCurveParameters,
//     x509alg.ErrUnknownCurve or ErrUnsupportedKeyType
func ResolveSigningKey(input PrivateKeyInput, chain []*x509certs.Certificate) (*KeyDescriptor, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: no chain available", ErrEmptyChain)
	}

	switch in := input.(type) {
	case EncodedKey:
		return decodeEncodedKey(in)
	case *EncodedKey:
		if in == nil {
			return nil, fmt.Errorf("%w: nil encoded key", ErrInvalidKey)
		}
		return decodeEncodedKey(*in)
	case RawKey:
		pub, err := PublicKeyOf(chain[0])
		if err != nil {
			return nil, err
		}
		return &KeyDescriptor{
			Kind:    pub.Kind,
			Data:    append([]byte(nil), in...),
			Curve:   pub.Curve,
			Params:  pub.Params,
			Private: true,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKeyType, input)
	}
}

func decodeEncodedKey(in EncodedKey) (*KeyDescriptor, error) {
	block, err := x509certs.DecodePEM(in.PEM)
	if err != nil {
		return nil, err
	}

	switch block.Type {
	case blockRSAPrivateKey:
		if _, err := x509.ParsePKCS1PrivateKey(block.Data); err != nil {
			return nil, fmt.Errorf("%w: rsa: %v", ErrInvalidKey, err)
		}
		return &KeyDescriptor{Kind: x509alg.KeyRSA, Data: block.Data, Private: true}, nil
	case blockECPrivateKey:
		return decodeSEC1(block.Data)
	case blockDSAPrivateKey:
		return decodeOpenSSLDSA(block.Data)
	case blockPKCS8PrivateKey, blockEncryptedPrivateKey:
		return decodePKCS8(block.Data, in.Password)
	default:
		return nil, fmt.Errorf("%w: PEM block %q", ErrUnsupportedKeyType, block.Type)
	}
}

// decodeSEC1 reads an RFC 5915 ECPrivateKey. The curve comes from the
// optional [0] parameters, which must be present.
func decodeSEC1(der []byte) (*KeyDescriptor, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	var version int64
	var scalar cryptobyte.String
	if !input.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) ||
		!seq.ReadASN1Integer(&version) || version != 1 ||
		!seq.ReadASN1(&scalar, cryptobyte_asn1.OCTET_STRING) {
		return nil, fmt.Errorf("%w: malformed EC private key", x509certs.ErrParse)
	}

	var params cryptobyte.String
	var hasParams bool
	if !seq.ReadOptionalASN1(&params, &hasParams, cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()) {
		return nil, fmt.Errorf("%w: malformed EC private key", x509certs.ErrParse)
	}
	if !hasParams || len(params) == 0 {
		return nil, fmt.Errorf("%w (key)", ErrMissingCurveParameters)
	}

	curve, err := resolveCurve(params)
	if err != nil {
		return nil, err
	}

	return &KeyDescriptor{
		Kind:    x509alg.KeyECDSA,
		Data:    append([]byte(nil), scalar...),
		Curve:   curve,
		Params:  append([]byte(nil), params...),
		Private: true,
	}, nil
}

// decodeOpenSSLDSA reads the OpenSSL "DSA PRIVATE KEY" structure
// SEQUENCE { version, p, q, g, y, x }.
func decodeOpenSSLDSA(der []byte) (*KeyDescriptor, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	var version int64
	p, q, g, y, x := new(big.Int), new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	if !input.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) ||
		!seq.ReadASN1Integer(&version) || version != 0 ||
		!seq.ReadASN1Integer(p) || !seq.ReadASN1Integer(q) || !seq.ReadASN1Integer(g) ||
		!seq.ReadASN1Integer(y) || !seq.ReadASN1Integer(x) {
		return nil, fmt.Errorf("%w: malformed DSA private key", x509certs.ErrParse)
	}

	return &KeyDescriptor{
		Kind:    x509alg.KeyDSA,
		Data:    x.Bytes(),
		Params:  marshalDSAParams(dsa.Parameters{P: p, Q: q, G: g}),
		Private: true,
	}, nil
}

// FromPrivateKey builds a descriptor from a Go private key.
//
// ECDSA curves are resolved through their named-curve OID so that the result
// is identical to decoding an EC PRIVATE KEY block for the same key.
func FromPrivateKey(key any) (*KeyDescriptor, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return &KeyDescriptor{Kind: x509alg.KeyRSA, Data: x509.MarshalPKCS1PrivateKey(k), Private: true}, nil

	case *ecdsa.PrivateKey:
		params, err := curveParams(k.Curve.Params().Name)
		if err != nil {
			return nil, err
		}
		curve, err := resolveCurve(params)
		if err != nil {
			return nil, err
		}
		scalar, err := k.Bytes()
		if err != nil {
			return nil, fmt.Errorf("%w: ecdsa: %v", ErrInvalidKey, err)
		}
		return &KeyDescriptor{Kind: x509alg.KeyECDSA, Data: scalar, Curve: curve, Params: params, Private: true}, nil

	case *dsa.PrivateKey:
		return &KeyDescriptor{
			Kind:    x509alg.KeyDSA,
			Data:    k.X.Bytes(),
			Params:  marshalDSAParams(k.Parameters),
			Private: true,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKeyType, key)
	}
}

var goCurveNames = map[string]x509alg.Curve{
	"P-224": x509alg.CurveP224,
	"P-256": x509alg.CurveP256,
	"P-384": x509alg.CurveP384,
	"P-521": x509alg.CurveP521,
}

// curveParams returns the DER named-curve OID for a Go curve name.
func curveParams(name string) ([]byte, error) {
	c, ok := goCurveNames[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", x509alg.ErrUnknownCurve, name)
	}
	dotted, _ := x509alg.CurveOID(c)

	var oid asn1.ObjectIdentifier
	for _, arc := range strings.Split(dotted, ".") {
		n, err := strconv.Atoi(arc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", x509alg.ErrUnknownCurve, dotted)
		}
		oid = append(oid, n)
	}

	var b cryptobyte.Builder
	b.AddASN1ObjectIdentifier(oid)
	return b.Bytes()
}
