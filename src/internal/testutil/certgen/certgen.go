// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certgen

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidDSA        = asn1.ObjectIdentifier{1, 2, 840, 10040, 4, 1}
	oidDSAWithSHA = asn1.ObjectIdentifier{1, 2, 840, 10040, 4, 3}
	oidCommonName = asn1.ObjectIdentifier{2, 5, 4, 3}
)

var serial atomic.Int64

// Cert is an issued test certificate together with its private key.
type Cert struct {
	DER  []byte
	Key  crypto.Signer
	Name string
	// x509 is nil for hand-built DSA certificates.
	x509 *x509.Certificate
}

// PEM returns the certificate as PEM text.
func (c *Cert) PEM() string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.DER}))
}

// Window is a validity window.
type Window struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// Current returns a window of one hour either side of now.
func Current() Window {
	now := time.Now()
	return Window{NotBefore: now.Add(-time.Hour), NotAfter: now.Add(time.Hour)}
}

// RSAKey generates a 2048-bit RSA key.
func RSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

// ECKey generates an ECDSA key on curve.
func ECKey(t testing.TB, curve elliptic.Curve) *ecdsa.PrivateKey {
	t.Helper()
	k, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	return k
}

var (
	dsaOnce   sync.Once
	dsaParams dsa.Parameters
	dsaErr    error
)

// DSAKey generates a DSA key over shared L1024N160 parameters.
func DSAKey(t testing.TB) *dsa.PrivateKey {
	t.Helper()
	dsaOnce.Do(func() {
		dsaErr = dsa.GenerateParameters(&dsaParams, rand.Reader, dsa.L1024N160)
	})
	require.NoError(t, dsaErr)

	k := &dsa.PrivateKey{PublicKey: dsa.PublicKey{Parameters: dsaParams}}
	require.NoError(t, dsa.GenerateKey(k, rand.Reader))
	return k
}

// Root self-signs a CA certificate for key.
func Root(t testing.TB, name string, key crypto.Signer, w Window) *Cert {
	t.Helper()
	tmpl := template(name, w, true)
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	require.NoError(t, err)
	xc, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &Cert{DER: der, Key: key, Name: name, x509: xc}
}

// Issue signs a certificate for key with the issuer c.
func (c *Cert) Issue(t testing.TB, name string, key crypto.Signer, isCA bool, w Window) *Cert {
	t.Helper()
	require.NotNil(t, c.x509, "hand-built issuers cannot issue through crypto/x509")
	tmpl := template(name, w, isCA)
	der, err := x509.CreateCertificate(rand.Reader, tmpl, c.x509, key.Public(), c.Key)
	require.NoError(t, err)
	xc, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &Cert{DER: der, Key: key, Name: name, x509: xc}
}

func template(name string, w Window, isCA bool) *x509.Certificate {
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial.Add(1)),
		Subject: pkix.Name{
			CommonName:         name,
			Organization:       []string{"Payment Test Org"},
			OrganizationalUnit: []string{"Payments"},
		},
		NotBefore:             w.NotBefore,
		NotAfter:              w.NotAfter,
		BasicConstraintsValid: true,
		IsCA:                  isCA,
	}
	if isCA {
		tmpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature
	} else {
		tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	}
	return tmpl
}

// Chain issues root -> intermediate -> leaf and returns them leaf first.
// Every certificate uses a fresh key produced by keygen.
func Chain(t testing.TB, keygen func(testing.TB) crypto.Signer, w Window) (leaf, intermediate, root *Cert) {
	t.Helper()
	root = Root(t, "Test Root CA", keygen(t), w)
	intermediate = root.Issue(t, "Test Intermediate CA", keygen(t), true, w)
	leaf = intermediate.Issue(t, "merchant.example", keygen(t), false, w)
	return leaf, intermediate, root
}

// DSARoot hand-builds a self-signed dsa-with-sha1 certificate.
func DSARoot(t testing.TB, name string, key *dsa.PrivateKey, w Window) *Cert {
	t.Helper()
	return &Cert{DER: DSAIssue(t, name, name, &key.PublicKey, key, w), Name: name}
}

// DSAIssue hand-builds a certificate for subject's DSA public key, signed
// with dsa-with-sha1 by issuerKey.
func DSAIssue(t testing.TB, subject, issuer string, pub *dsa.PublicKey, issuerKey *dsa.PrivateKey, w Window) []byte {
	t.Helper()

	var spki cryptobyte.Builder
	spki.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oidDSA)
			b.AddBytes(DSAParams(pub.Parameters))
		})
		var y cryptobyte.Builder
		y.AddASN1BigInt(pub.Y)
		b.AddASN1BitString(y.BytesOrPanic())
	})

	return Build(t, Spec{
		Subject:   subject,
		Issuer:    issuer,
		Window:    w,
		SPKI:      spki.BytesOrPanic(),
		SigAlgOID: oidDSAWithSHA,
		Sign: func(tbs []byte) []byte {
			digest := sha1.Sum(tbs)
			r, s, err := dsa.Sign(rand.Reader, issuerKey, digest[:])
			require.NoError(t, err)
			var sig cryptobyte.Builder
			sig.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1BigInt(r)
				b.AddASN1BigInt(s)
			})
			return sig.BytesOrPanic()
		},
	})
}

// DSAParams encodes Dss-Parms as a DER SEQUENCE.
func DSAParams(p dsa.Parameters) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(p.P)
		b.AddASN1BigInt(p.Q)
		b.AddASN1BigInt(p.G)
	})
	return b.BytesOrPanic()
}

// Spec describes a hand-built certificate.
type Spec struct {
	Subject   string
	Issuer    string
	Window    Window
	SPKI      []byte // complete SubjectPublicKeyInfo element
	SigAlgOID asn1.ObjectIdentifier
	Sign      func(tbs []byte) []byte
}

// Build assembles and signs a v3 certificate without extensions.
func Build(t testing.TB, s Spec) []byte {
	t.Helper()

	var tbs cryptobyte.Builder
	tbs.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cryptobyte_asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddASN1Int64(2)
		})
		b.AddASN1Int64(serial.Add(1))
		addAlgorithm(b, s.SigAlgOID)
		addName(b, s.Issuer)
		b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1GeneralizedTime(s.Window.NotBefore.UTC())
			b.AddASN1GeneralizedTime(s.Window.NotAfter.UTC())
		})
		addName(b, s.Subject)
		b.AddBytes(s.SPKI)
	})
	tbsDER, err := tbs.Bytes()
	require.NoError(t, err)

	var cert cryptobyte.Builder
	cert.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddBytes(tbsDER)
		addAlgorithm(b, s.SigAlgOID)
		b.AddASN1BitString(s.Sign(tbsDER))
	})
	der, err := cert.Bytes()
	require.NoError(t, err)
	return der
}

func addAlgorithm(b *cryptobyte.Builder, oid asn1.ObjectIdentifier) {
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(oid)
	})
}

func addName(b *cryptobyte.Builder, cn string) {
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cryptobyte_asn1.SET, func(b *cryptobyte.Builder) {
			b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(oidCommonName)
				b.AddASN1(cryptobyte_asn1.UTF8String, func(b *cryptobyte.Builder) {
					b.AddBytes([]byte(cn))
				})
			})
		})
	})
}

// Raw returns the DER encodings of certs in order.
func Raw(certs ...*Cert) [][]byte {
	out := make([][]byte, len(certs))
	for i, c := range certs {
		out[i] = c.DER
	}
	return out
}

// ECDSAKeygen and RSAKeygen adapt the key constructors for Chain.
func ECDSAKeygen(t testing.TB) crypto.Signer { return ECKey(t, elliptic.P256()) }

func RSAKeygen(t testing.TB) crypto.Signer { return RSAKey(t) }
