// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509keys

import (
	"bytes"
	"crypto"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"

	"github.com/youmark/pkcs8"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
)

var (
	oidPBES2          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 13}
	oidPBKDF2         = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 12}
	oidScrypt         = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11591, 4, 11}
	oidHMACWithSHA1   = asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 7}
	oidHMACWithSHA256 = asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 9}
)

// pbes2Ciphers are the PBES2 encryption schemes pkcs8 registers.
var pbes2Ciphers = []pkcs8.Cipher{
	pkcs8.AES128CBC,
	pkcs8.AES192CBC,
	pkcs8.AES256CBC,
	pkcs8.TripleDESCBC,
}

var errIncorrectPassword = errors.New("incorrect password")

// decodePKCS8 reads a PKCS#8 PrivateKeyInfo, decrypting it first when a
// password is given.
//
// crypto/x509 has no DSA support, so DSA keys are read here directly and
// every other algorithm is handed to pkcs8.
func decodePKCS8(der, password []byte) (*KeyDescriptor, error) {
	if len(password) > 0 {
		plain, err := decryptPKCS8(der, password)
		if err != nil {
			return nil, fmt.Errorf("%w: pkcs8: %v", ErrInvalidKey, err)
		}
		der = plain
	}

	if desc, ok, err := decodePKCS8DSA(der); ok {
		return desc, err
	}

	key, err := pkcs8.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: pkcs8: %v", ErrInvalidKey, err)
	}
	return FromPrivateKey(key)
}

// decodePKCS8DSA reads a DSA PrivateKeyInfo:
//
//	SEQUENCE { version, SEQUENCE { id-dsa, Dss-Parms }, OCTET STRING { INTEGER x } }
//
// ok is false when der is not a DSA key, leaving it for other decoders.
func decodePKCS8DSA(der []byte) (desc *KeyDescriptor, ok bool, err error) {
	input := cryptobyte.String(der)
	var seq, algID cryptobyte.String
	var version int64
	var oid asn1.ObjectIdentifier
	if !input.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) ||
		!seq.ReadASN1Integer(&version) ||
		!seq.ReadASN1(&algID, cryptobyte_asn1.SEQUENCE) ||
		!algID.ReadASN1ObjectIdentifier(&oid) {
		return nil, false, nil
	}
	if d, err := x509alg.LookupByKeyOID(oid.String()); err != nil || d.Key != x509alg.KeyDSA {
		return nil, false, nil
	}

	var params, wrapped cryptobyte.String
	x := new(big.Int)
	if version != 0 ||
		!algID.ReadASN1Element(&params, cryptobyte_asn1.SEQUENCE) ||
		!seq.ReadASN1(&wrapped, cryptobyte_asn1.OCTET_STRING) ||
		!wrapped.ReadASN1Integer(x) || x.Sign() <= 0 {
		return nil, true, fmt.Errorf("%w: malformed DSA PKCS#8 key", x509certs.ErrParse)
	}

	p, err := parseDSAParams(params)
	if err != nil {
		return nil, true, err
	}

	return &KeyDescriptor{
		Kind:    x509alg.KeyDSA,
		Data:    x.Bytes(),
		Params:  marshalDSAParams(p),
		Private: true,
	}, true, nil
}

// decryptPKCS8 opens a PBES2 EncryptedPrivateKeyInfo and returns the inner
// PrivateKeyInfo DER. Key derivation and the block cipher come from pkcs8.
func decryptPKCS8(der, password []byte) ([]byte, error) {
	input := cryptobyte.String(der)
	var seq, encAlg, pbes2, kdf, scheme, encrypted cryptobyte.String
	var oid asn1.ObjectIdentifier
	if !input.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) ||
		!seq.ReadASN1(&encAlg, cryptobyte_asn1.SEQUENCE) ||
		!encAlg.ReadASN1ObjectIdentifier(&oid) {
		return nil, errors.New("malformed encrypted private key")
	}
	if !oid.Equal(oidPBES2) {
		return nil, fmt.Errorf("unsupported encryption %s, only PBES2", oid)
	}
	if !encAlg.ReadASN1(&pbes2, cryptobyte_asn1.SEQUENCE) ||
		!pbes2.ReadASN1(&kdf, cryptobyte_asn1.SEQUENCE) ||
		!pbes2.ReadASN1(&scheme, cryptobyte_asn1.SEQUENCE) ||
		!seq.ReadASN1(&encrypted, cryptobyte_asn1.OCTET_STRING) {
		return nil, errors.New("malformed PBES2 parameters")
	}

	cipher, iv, err := pbes2Cipher(scheme)
	if err != nil {
		return nil, err
	}
	symKey, err := deriveKey(kdf, password, cipher.KeySize())
	if err != nil {
		return nil, err
	}

	plain, err := cipher.Decrypt(symKey, iv, encrypted)
	if err != nil {
		return nil, err
	}
	return unpad(plain, cipher.IVSize())
}

func pbes2Cipher(scheme cryptobyte.String) (pkcs8.Cipher, []byte, error) {
	var oid asn1.ObjectIdentifier
	var iv cryptobyte.String
	if !scheme.ReadASN1ObjectIdentifier(&oid) || !scheme.ReadASN1(&iv, cryptobyte_asn1.OCTET_STRING) {
		return nil, nil, errors.New("malformed encryption scheme")
	}
	for _, c := range pbes2Ciphers {
		if c.OID().Equal(oid) {
			if len(iv) != c.IVSize() {
				return nil, nil, errors.New("invalid cipher parameters")
			}
			return c, iv, nil
		}
	}
	return nil, nil, fmt.Errorf("unsupported cipher %s", oid)
}

func deriveKey(kdf cryptobyte.String, password []byte, size int) ([]byte, error) {
	var oid asn1.ObjectIdentifier
	var params, salt cryptobyte.String
	if !kdf.ReadASN1ObjectIdentifier(&oid) ||
		!kdf.ReadASN1(&params, cryptobyte_asn1.SEQUENCE) ||
		!params.ReadASN1(&salt, cryptobyte_asn1.OCTET_STRING) {
		return nil, errors.New("malformed key derivation parameters")
	}

	switch {
	case oid.Equal(oidPBKDF2):
		var iterations, keyLength int64
		if !params.ReadASN1Integer(&iterations) || iterations <= 0 ||
			!params.ReadOptionalASN1Integer(&keyLength, cryptobyte_asn1.INTEGER, int64(0)) {
			return nil, errors.New("malformed PBKDF2 parameters")
		}
		prf := crypto.SHA1
		if !params.Empty() {
			var prfAlg cryptobyte.String
			var prfOID asn1.ObjectIdentifier
			if !params.ReadASN1(&prfAlg, cryptobyte_asn1.SEQUENCE) || !prfAlg.ReadASN1ObjectIdentifier(&prfOID) {
				return nil, errors.New("malformed PBKDF2 parameters")
			}
			switch {
			case prfOID.Equal(oidHMACWithSHA1):
			case prfOID.Equal(oidHMACWithSHA256):
				prf = crypto.SHA256
			default:
				return nil, fmt.Errorf("unsupported PBKDF2 PRF %s", prfOID)
			}
		}
		opts := pkcs8.PBKDF2Opts{IterationCount: int(iterations), HMACHash: prf}
		key, _, err := opts.DeriveKey(password, salt, size)
		return key, err

	case oid.Equal(oidScrypt):
		var n, r, p int64
		if !params.ReadASN1Integer(&n) || !params.ReadASN1Integer(&r) || !params.ReadASN1Integer(&p) {
			return nil, errors.New("malformed scrypt parameters")
		}
		opts := pkcs8.ScryptOpts{CostParameter: int(n), BlockSize: int(r), ParallelizationParameter: int(p)}
		key, _, err := opts.DeriveKey(password, salt, size)
		return key, err

	default:
		return nil, fmt.Errorf("unsupported key derivation %s", oid)
	}
}

// unpad strips PKCS#7 padding. Bad padding almost always means the
// password was wrong.
func unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errIncorrectPassword
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || !bytes.Equal(b[len(b)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, errIncorrectPassword
	}
	return b[:len(b)-n], nil
}
