// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509keys_test

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youmark/pkcs8"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/testutil/certgen"
	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
	x509keys "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/keys"
)

func pemText(blockType string, der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der}))
}

func openSSLDSA(k *dsa.PrivateKey) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		for _, n := range []*big.Int{k.P, k.Q, k.G, k.Y, k.X} {
			b.AddASN1BigInt(n)
		}
	})
	return b.BytesOrPanic()
}

var oidDSA = asn1.ObjectIdentifier{1, 2, 840, 10040, 4, 1}

// pkcs8DSA builds the PrivateKeyInfo crypto/x509 cannot produce for DSA.
func pkcs8DSA(k *dsa.PrivateKey) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oidDSA)
			b.AddBytes(certgen.DSAParams(k.Parameters))
		})
		b.AddASN1(cryptobyte_asn1.OCTET_STRING, func(b *cryptobyte.Builder) {
			b.AddASN1BigInt(k.X)
		})
	})
	return b.BytesOrPanic()
}

// encryptPKCS8 wraps plain in a PBES2 EncryptedPrivateKeyInfo using
// PBKDF2-SHA256 and AES-256-CBC.
func encryptPKCS8(t *testing.T, plain, password []byte) []byte {
	t.Helper()
	salt := []byte("bip70salt")
	iv := []byte("0123456789abcdef")
	kdf := pkcs8.PBKDF2Opts{SaltSize: len(salt), IterationCount: 1000, HMACHash: crypto.SHA256}
	key, params, err := kdf.DeriveKey(password, salt, pkcs8.AES256CBC.KeySize())
	require.NoError(t, err)
	kdfParams, err := asn1.Marshal(params)
	require.NoError(t, err)
	encrypted, err := pkcs8.AES256CBC.Encrypt(key, iv, plain)
	require.NoError(t, err)

	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 13})
			b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1ObjectIdentifier(kdf.OID())
					b.AddBytes(kdfParams)
				})
				b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1ObjectIdentifier(pkcs8.AES256CBC.OID())
					b.AddASN1OctetString(iv)
				})
			})
		})
		b.AddASN1OctetString(encrypted)
	})
	return b.BytesOrPanic()
}

func TestResolveSigningKey(t *testing.T) {
	w := certgen.Current()
	ecKey := certgen.ECKey(t, elliptic.P256())
	ecLeaf := []*x509certs.Certificate{decode(t, certgen.Root(t, "EC Leaf", ecKey, w).DER)}

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Empty Chain",
			testFunc: func(t *testing.T) {
				_, err := x509keys.ResolveSigningKey(x509keys.RawKey{1}, nil)
				assert.ErrorIs(t, err, x509keys.ErrEmptyChain)
			},
		},
		{
			name: "SEC1 EC Private Key",
			testFunc: func(t *testing.T) {
				der, err := x509.MarshalECPrivateKey(ecKey)
				require.NoError(t, err)

				desc, err := x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: pemText("EC PRIVATE KEY", der)}, ecLeaf)
				require.NoError(t, err)
				assert.Equal(t, x509alg.KeyECDSA, desc.Kind)
				assert.Equal(t, x509alg.CurveP256, desc.Curve)
				assert.True(t, desc.Private)

				priv, err := desc.PrivateKey()
				require.NoError(t, err)
				assert.True(t, ecKey.Equal(priv))
			},
		},
		{
			name: "SEC1 Curve Comes From Key Not Chain",
			testFunc: func(t *testing.T) {
				other := certgen.ECKey(t, elliptic.P384())
				der, err := x509.MarshalECPrivateKey(other)
				require.NoError(t, err)

				desc, err := x509keys.ResolveSigningKey(&x509keys.EncodedKey{PEM: pemText("EC PRIVATE KEY", der)}, ecLeaf)
				require.NoError(t, err)
				assert.Equal(t, x509alg.CurveP384, desc.Curve)
			},
		},
		{
			name: "PKCS1 RSA Private Key",
			testFunc: func(t *testing.T) {
				key := certgen.RSAKey(t)
				desc, err := x509keys.ResolveSigningKey(
					x509keys.EncodedKey{PEM: pemText("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key))}, ecLeaf)
				require.NoError(t, err)
				assert.Equal(t, x509alg.KeyRSA, desc.Kind)

				priv, err := desc.PrivateKey()
				require.NoError(t, err)
				assert.True(t, key.Equal(priv))
			},
		},
		{
			name: "PKCS8 Private Key",
			testFunc: func(t *testing.T) {
				der, err := x509.MarshalPKCS8PrivateKey(ecKey)
				require.NoError(t, err)

				desc, err := x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: pemText("PRIVATE KEY", der)}, ecLeaf)
				require.NoError(t, err)

				sec1, err := x509.MarshalECPrivateKey(ecKey)
				require.NoError(t, err)
				want, err := x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: pemText("EC PRIVATE KEY", sec1)}, ecLeaf)
				require.NoError(t, err)
				assert.Equal(t, want, desc)
			},
		},
		{
			name: "Encrypted PKCS8 Private Key",
			testFunc: func(t *testing.T) {
				password := []byte("hunter2")
				der, err := pkcs8.MarshalPrivateKey(ecKey, password, nil)
				require.NoError(t, err)
				text := pemText("ENCRYPTED PRIVATE KEY", der)

				desc, err := x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: text, Password: password}, ecLeaf)
				require.NoError(t, err)
				priv, err := desc.PrivateKey()
				require.NoError(t, err)
				assert.True(t, ecKey.Equal(priv))

				_, err = x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: text, Password: []byte("wrong")}, ecLeaf)
				assert.ErrorIs(t, err, x509keys.ErrInvalidKey)
			},
		},
		{
			name: "OpenSSL DSA Private Key",
			testFunc: func(t *testing.T) {
				key := certgen.DSAKey(t)
				desc, err := x509keys.ResolveSigningKey(
					x509keys.EncodedKey{PEM: pemText("DSA PRIVATE KEY", openSSLDSA(key))}, ecLeaf)
				require.NoError(t, err)
				assert.Equal(t, x509alg.KeyDSA, desc.Kind)

				priv, err := desc.PrivateKey()
				require.NoError(t, err)
				dsaPriv := priv.(*dsa.PrivateKey)
				assert.Equal(t, 0, dsaPriv.X.Cmp(key.X))
				assert.Equal(t, 0, dsaPriv.Y.Cmp(key.Y), "public value is recomputed from x")
			},
		},
		{
			name: "PKCS8 DSA Private Key",
			testFunc: func(t *testing.T) {
				key := certgen.DSAKey(t)
				desc, err := x509keys.ResolveSigningKey(
					x509keys.EncodedKey{PEM: pemText("PRIVATE KEY", pkcs8DSA(key))}, ecLeaf)
				require.NoError(t, err)

				want, err := x509keys.ResolveSigningKey(
					x509keys.EncodedKey{PEM: pemText("DSA PRIVATE KEY", openSSLDSA(key))}, ecLeaf)
				require.NoError(t, err)
				assert.Equal(t, want, desc)

				priv, err := desc.PrivateKey()
				require.NoError(t, err)
				assert.Equal(t, 0, priv.(*dsa.PrivateKey).Y.Cmp(key.Y))
			},
		},
		{
			name: "Encrypted PKCS8 DSA Private Key",
			testFunc: func(t *testing.T) {
				key := certgen.DSAKey(t)
				password := []byte("hunter2")
				text := pemText("ENCRYPTED PRIVATE KEY", encryptPKCS8(t, pkcs8DSA(key), password))

				desc, err := x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: text, Password: password}, ecLeaf)
				require.NoError(t, err)
				assert.Equal(t, x509alg.KeyDSA, desc.Kind)
				assert.Equal(t, key.X.Bytes(), desc.Data)
				assert.Equal(t, certgen.DSAParams(key.Parameters), desc.Params)

				_, err = x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: text, Password: []byte("wrong")}, ecLeaf)
				assert.ErrorIs(t, err, x509keys.ErrInvalidKey)
			},
		},
		{
			name: "Encrypted PKCS8 RSA Private Key",
			testFunc: func(t *testing.T) {
				key := certgen.RSAKey(t)
				plain, err := x509.MarshalPKCS8PrivateKey(key)
				require.NoError(t, err)
				password := []byte("hunter2")
				text := pemText("ENCRYPTED PRIVATE KEY", encryptPKCS8(t, plain, password))

				desc, err := x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: text, Password: password}, ecLeaf)
				require.NoError(t, err)
				assert.Equal(t, x509.MarshalPKCS1PrivateKey(key), desc.Data)
			},
		},
		{
			name: "Malformed PKCS8 DSA Private Key",
			testFunc: func(t *testing.T) {
				key := certgen.DSAKey(t)
				var b cryptobyte.Builder
				b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1Int64(0)
					b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
						b.AddASN1ObjectIdentifier(oidDSA)
						b.AddBytes(certgen.DSAParams(key.Parameters))
					})
				})

				_, err := x509keys.ResolveSigningKey(
					x509keys.EncodedKey{PEM: pemText("PRIVATE KEY", b.BytesOrPanic())}, ecLeaf)
				assert.ErrorIs(t, err, x509certs.ErrParse)
			},
		},
		{
			name: "Unsupported PEM Type",
			testFunc: func(t *testing.T) {
				_, err := x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: pemText("CERTIFICATE", []byte{1})}, ecLeaf)
				assert.ErrorIs(t, err, x509keys.ErrUnsupportedKeyType)
			},
		},
		{
			name: "Not PEM",
			testFunc: func(t *testing.T) {
				_, err := x509keys.ResolveSigningKey(x509keys.EncodedKey{PEM: "not a key"}, ecLeaf)
				assert.ErrorIs(t, err, x509certs.ErrParse)
			},
		},
		{
			name: "Raw ECDSA Scalar Inherits Curve From Leaf",
			testFunc: func(t *testing.T) {
				scalar, err := ecKey.Bytes()
				require.NoError(t, err)

				desc, err := x509keys.ResolveSigningKey(x509keys.RawKey(scalar), ecLeaf)
				require.NoError(t, err)
				assert.Equal(t, x509alg.KeyECDSA, desc.Kind)
				assert.Equal(t, x509alg.CurveP256, desc.Curve)
				assert.Equal(t, ecLeaf[0].PublicKeyInfo.Parameters, desc.Params)

				priv, err := desc.PrivateKey()
				require.NoError(t, err)
				assert.True(t, ecKey.Equal(priv))
			},
		},
		{
			name: "Raw RSA Key",
			testFunc: func(t *testing.T) {
				key := certgen.RSAKey(t)
				chain := []*x509certs.Certificate{decode(t, certgen.Root(t, "RSA Leaf", key, w).DER)}

				desc, err := x509keys.ResolveSigningKey(x509keys.RawKey(x509.MarshalPKCS1PrivateKey(key)), chain)
				require.NoError(t, err)
				assert.Equal(t, x509alg.KeyRSA, desc.Kind)
				priv, err := desc.PrivateKey()
				require.NoError(t, err)
				assert.IsType(t, &rsa.PrivateKey{}, priv)
			},
		},
		{
			name: "Raw DSA Key Takes Parameters From Leaf",
			testFunc: func(t *testing.T) {
				key := certgen.DSAKey(t)
				chain := []*x509certs.Certificate{decode(t, certgen.DSARoot(t, "DSA Leaf", key, w).DER)}

				desc, err := x509keys.ResolveSigningKey(x509keys.RawKey(key.X.Bytes()), chain)
				require.NoError(t, err)
				priv, err := desc.PrivateKey()
				require.NoError(t, err)
				assert.Equal(t, 0, priv.(*dsa.PrivateKey).Y.Cmp(key.Y))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestFromPrivateKey(t *testing.T) {
	for _, curve := range []elliptic.Curve{elliptic.P224(), elliptic.P256(), elliptic.P384(), elliptic.P521()} {
		t.Run(curve.Params().Name, func(t *testing.T) {
			key := certgen.ECKey(t, curve)
			desc, err := x509keys.FromPrivateKey(key)
			require.NoError(t, err)

			priv, err := desc.PrivateKey()
			require.NoError(t, err)
			assert.True(t, key.Equal(priv.(*ecdsa.PrivateKey)))
		})
	}

	t.Run("Unsupported", func(t *testing.T) {
		_, err := x509keys.FromPrivateKey("nope")
		assert.ErrorIs(t, err, x509keys.ErrUnsupportedKeyType)
	})
}
