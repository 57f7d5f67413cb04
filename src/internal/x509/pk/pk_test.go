// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pk_test

import (
	"crypto"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/testutil/certgen"
	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
	x509keys "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/keys"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/pk"
)

// keyPair returns matching private and public descriptors for key.
func keyPair(t *testing.T, key crypto.Signer) (priv, pub *x509keys.KeyDescriptor) {
	t.Helper()
	priv, err := x509keys.FromPrivateKey(key)
	require.NoError(t, err)

	cert, err := x509certs.Decode(certgen.Root(t, "Signer", key, certgen.Current()).DER)
	require.NoError(t, err)
	pub, err = x509keys.PublicKeyOf(cert)
	require.NoError(t, err)
	return priv, pub
}

func TestDigest(t *testing.T) {
	tests := []struct {
		kind x509alg.HashKind
		want string
	}{
		// RFC 1319, RFC 1320 and FIPS test vectors for "abc".
		{x509alg.HashMD2, "da853b0d3f88d99b30283a69e6ded6bb"},
		{x509alg.HashMD4, "a448017aaf21d8525fc10ae87aa6729d"},
		{x509alg.HashMD5, "900150983cd24fb0d6963f7d28e17f72"},
		{x509alg.HashSHA1, "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{x509alg.HashSHA256, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := pk.Digest(tt.kind, []byte("abc"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(got))
		})
	}

	t.Run("Unsupported", func(t *testing.T) {
		_, err := pk.Digest(x509alg.HashNone, []byte("abc"))
		assert.ErrorIs(t, err, pk.ErrUnsupportedHash)
	})
}

func TestSignVerify(t *testing.T) {
	rsaKey := certgen.RSAKey(t)
	dsaKey := certgen.DSAKey(t)
	msg := []byte("payment request")

	tests := []struct {
		name   string
		signer crypto.Signer
		hashes []x509alg.HashKind
	}{
		{
			name:   "RSA",
			signer: rsaKey,
			hashes: []x509alg.HashKind{x509alg.HashMD2, x509alg.HashMD4, x509alg.HashMD5, x509alg.HashSHA1, x509alg.HashSHA256, x509alg.HashSHA512},
		},
		{
			name:   "ECDSA P-256",
			signer: certgen.ECKey(t, elliptic.P256()),
			hashes: []x509alg.HashKind{x509alg.HashSHA1, x509alg.HashSHA256, x509alg.HashSHA384},
		},
		{
			name:   "ECDSA P-521",
			signer: certgen.ECKey(t, elliptic.P521()),
			hashes: []x509alg.HashKind{x509alg.HashSHA512},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priv, pub := keyPair(t, tt.signer)
			for _, h := range tt.hashes {
				sig, err := pk.Sign(h, msg, priv)
				require.NoError(t, err, h.String())

				ok, err := pk.Verify(h, msg, sig, pub)
				require.NoError(t, err)
				assert.True(t, ok, h.String())

				ok, err = pk.Verify(h, []byte("tampered"), sig, pub)
				require.NoError(t, err)
				assert.False(t, ok, h.String())
			}
		})
	}

	t.Run("DSA With Truncated SHA-256", func(t *testing.T) {
		priv, err := x509keys.FromPrivateKey(dsaKey)
		require.NoError(t, err)
		cert, err := x509certs.Decode(certgen.DSARoot(t, "DSA Signer", dsaKey, certgen.Current()).DER)
		require.NoError(t, err)
		pub, err := x509keys.PublicKeyOf(cert)
		require.NoError(t, err)

		for _, h := range []x509alg.HashKind{x509alg.HashSHA1, x509alg.HashSHA256} {
			sig, err := pk.Sign(h, msg, priv)
			require.NoError(t, err)
			ok, err := pk.Verify(h, msg, sig, pub)
			require.NoError(t, err)
			assert.True(t, ok, h.String())
		}
	})

	t.Run("Matches Standard Library RSA", func(t *testing.T) {
		_, pub := keyPair(t, rsaKey)
		digest := sha256.Sum256(msg)
		sig, err := rsaKey.Sign(rand.Reader, digest[:], crypto.SHA256)
		require.NoError(t, err)

		ok, err := pk.Verify(x509alg.HashSHA256, msg, sig, pub)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestVerify_Failures(t *testing.T) {
	priv, pub := keyPair(t, certgen.ECKey(t, elliptic.P256()))
	msg := []byte("abc")

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Garbage Signature Is False",
			testFunc: func(t *testing.T) {
				ok, err := pk.Verify(x509alg.HashSHA256, msg, []byte{0x30, 0x00}, pub)
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "Hash None Is Unsupported",
			testFunc: func(t *testing.T) {
				_, err := pk.Verify(x509alg.HashNone, msg, []byte{1}, pub)
				assert.ErrorIs(t, err, pk.ErrUnsupportedHash)
			},
		},
		{
			name: "Private Descriptor Cannot Verify",
			testFunc: func(t *testing.T) {
				_, err := pk.Verify(x509alg.HashSHA256, msg, []byte{1}, priv)
				assert.ErrorIs(t, err, pk.ErrInvalidKey)
			},
		},
		{
			name: "Public Descriptor Cannot Sign",
			testFunc: func(t *testing.T) {
				_, err := pk.Sign(x509alg.HashSHA256, msg, pub)
				assert.ErrorIs(t, err, pk.ErrInvalidKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}
