// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509keys

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
)

var (
	// ErrEmptyChain indicates that a chain operation received no certificates.
	ErrEmptyChain = errors.New("x509keys: empty certificate chain")

	// ErrMissingCurveParameters indicates an ECDSA key without named-curve parameters.
	ErrMissingCurveParameters = errors.New("x509keys: no curve selected for ECDSA")

	// ErrInvalidKey indicates key material that does not match its declared kind.
	ErrInvalidKey = errors.New("x509keys: invalid key material")

	// ErrUnsupportedKeyType indicates a PEM block or Go key type that cannot be used for signing.
	ErrUnsupportedKeyType = errors.New("x509keys: unsupported key type")
)

// KeyDescriptor is a resolved key, public or private.
//
// Data depends on Kind:
//   - RSA: PKCS#1 RSAPublicKey or RSAPrivateKey DER
//   - DSA: the DER INTEGER y (public) or the unsigned big-endian x (private)
//   - ECDSA: the uncompressed point (public) or the unsigned scalar (private)
//
// Params holds the DER algorithm parameters: Dss-Parms for DSA, the named
// curve OID for ECDSA, nil for RSA.
type KeyDescriptor struct {
	Kind    x509alg.KeyKind
	Data    []byte
	Curve   x509alg.Curve
	Params  []byte
	Private bool
}

// PublicKeyOf resolves the public key carried by cert.
//
// ECDSA keys must carry named-curve parameters, which are decoded and looked
// up in the curve registry. RSA and DSA keys have no curve.
//
// Parameters:
//   - cert: Decoded certificate
//
// Returns:
//   - *KeyDescriptor: Public key descriptor
//   - error: x509alg.ErrUnknownAlgorithm, ErrMissingCurveParameters,
//     x509alg.ErrUnknownCurve or x509certs.ErrParse
func PublicKeyOf(cert *x509certs.Certificate) (*KeyDescriptor, error) {
	info := cert.PublicKeyInfo

	alg, err := x509alg.LookupByKeyOID(info.AlgorithmOID)
	if err != nil {
		return nil, err
	}

	key := &KeyDescriptor{
		Kind:   alg.Key,
		Data:   info.PublicKey,
		Params: info.Parameters,
	}

	if alg.Key == x509alg.KeyECDSA {
		if len(info.Parameters) == 0 {
			return nil, fmt.Errorf("%w (certificate)", ErrMissingCurveParameters)
		}
		if key.Curve, err = resolveCurve(info.Parameters); err != nil {
			return nil, err
		}
	}

	return key, nil
}

// ResolveVerifyKey returns the public key of the chain's end-entity certificate.
func ResolveVerifyKey(chain []*x509certs.Certificate) (*KeyDescriptor, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: no verify key available", ErrEmptyChain)
	}
	return PublicKeyOf(chain[0])
}

// resolveCurve decodes a named-curve OID element and looks it up.
func resolveCurve(params []byte) (x509alg.Curve, error) {
	oid, err := x509certs.ParseOID(params)
	if err != nil {
		return "", fmt.Errorf("could not parse curve OID: %w", err)
	}
	return x509alg.LookupCurve(oid)
}

// EllipticCurve maps a registry curve onto its Go implementation.
func EllipticCurve(c x509alg.Curve) (elliptic.Curve, error) {
	switch c {
	case x509alg.CurveP224:
		return elliptic.P224(), nil
	case x509alg.CurveP256:
		return elliptic.P256(), nil
	case x509alg.CurveP384:
		return elliptic.P384(), nil
	case x509alg.CurveP521:
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("%w: %q", x509alg.ErrUnknownCurve, c)
	}
}

// PublicKey converts the descriptor into a Go public key
// (*rsa.PublicKey, *dsa.PublicKey or *ecdsa.PublicKey).
func (k *KeyDescriptor) PublicKey() (crypto.PublicKey, error) {
	if k.Private {
		return nil, fmt.Errorf("%w: descriptor holds a private key", ErrInvalidKey)
	}

	switch k.Kind {
	case x509alg.KeyRSA:
		pub, err := x509.ParsePKCS1PublicKey(k.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: rsa: %v", ErrInvalidKey, err)
		}
		return pub, nil

	case x509alg.KeyDSA:
		params, err := parseDSAParams(k.Params)
		if err != nil {
			return nil, err
		}
		y := new(big.Int)
		s := cryptobyte.String(k.Data)
		if !s.ReadASN1Integer(y) || !s.Empty() || y.Sign() <= 0 {
			return nil, fmt.Errorf("%w: dsa public value", ErrInvalidKey)
		}
		return &dsa.PublicKey{Parameters: params, Y: y}, nil

	case x509alg.KeyECDSA:
		curve, err := EllipticCurve(k.Curve)
		if err != nil {
			return nil, err
		}
		pub, err := ecdsa.ParseUncompressedPublicKey(curve, k.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: ecdsa: %v", ErrInvalidKey, err)
		}
		return pub, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, k.Kind)
	}
}

// PrivateKey converts the descriptor into a Go private key
// (*rsa.PrivateKey, *dsa.PrivateKey or *ecdsa.PrivateKey).
func (k *KeyDescriptor) PrivateKey() (crypto.PrivateKey, error) {
	if !k.Private {
		return nil, fmt.Errorf("%w: descriptor holds a public key", ErrInvalidKey)
	}

	switch k.Kind {
	case x509alg.KeyRSA:
		priv, err := x509.ParsePKCS1PrivateKey(k.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: rsa: %v", ErrInvalidKey, err)
		}
		return priv, nil

	case x509alg.KeyDSA:
		params, err := parseDSAParams(k.Params)
		if err != nil {
			return nil, err
		}
		x := new(big.Int).SetBytes(k.Data)
		if x.Sign() <= 0 || x.Cmp(params.Q) >= 0 {
			return nil, fmt.Errorf("%w: dsa private value out of range", ErrInvalidKey)
		}
		y := new(big.Int).Exp(params.G, x, params.P)
		return &dsa.PrivateKey{PublicKey: dsa.PublicKey{Parameters: params, Y: y}, X: x}, nil

	case x509alg.KeyECDSA:
		curve, err := EllipticCurve(k.Curve)
		if err != nil {
			return nil, err
		}
		size := (curve.Params().BitSize + 7) / 8
		if len(k.Data) == 0 || len(k.Data) > size {
			return nil, fmt.Errorf("%w: ecdsa scalar length %d", ErrInvalidKey, len(k.Data))
		}
		scalar := make([]byte, size)
		copy(scalar[size-len(k.Data):], k.Data)
		priv, err := ecdsa.ParseRawPrivateKey(curve, scalar)
		if err != nil {
			return nil, fmt.Errorf("%w: ecdsa: %v", ErrInvalidKey, err)
		}
		return priv, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, k.Kind)
	}
}

func parseDSAParams(der []byte) (dsa.Parameters, error) {
	var params dsa.Parameters
	if len(der) == 0 {
		return params, fmt.Errorf("%w: dsa parameters unavailable", ErrInvalidKey)
	}

	p, q, g := new(big.Int), new(big.Int), new(big.Int)
	s := cryptobyte.String(der)
	var seq cryptobyte.String
	if !s.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) || !s.Empty() ||
		!seq.ReadASN1Integer(p) || !seq.ReadASN1Integer(q) || !seq.ReadASN1Integer(g) || !seq.Empty() {
		return params, fmt.Errorf("%w: malformed dsa parameters", ErrInvalidKey)
	}
	if p.Sign() <= 0 || q.Sign() <= 0 || g.Sign() <= 0 {
		return params, fmt.Errorf("%w: malformed dsa parameters", ErrInvalidKey)
	}

	params.P, params.Q, params.G = p, q, g
	return params, nil
}

func marshalDSAParams(p dsa.Parameters) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(p.P)
		b.AddASN1BigInt(p.Q)
		b.AddASN1BigInt(p.G)
	})
	return b.BytesOrPanic()
}
