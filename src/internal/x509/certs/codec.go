// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"encoding/pem"
	"strings"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// BlockTypeCertificate is the normalized PEM type of a certificate block.
const BlockTypeCertificate = "certificate"

// Block is a decoded PEM block with its type normalized to lowercase.
type Block struct {
	Type    string
	Headers map[string]string
	Data    []byte
}

// DecodePEM decodes the first PEM block in text.
//
// Returns:
//   - *Block: Block with lowercase Type (e.g. "certificate", "ec private key")
//   - error: ErrInvalidPEMBlock if no block is present
func DecodePEM(text string) (*Block, error) {
	block, _ := pem.Decode([]byte(text))
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	return newBlock(block), nil
}

// DecodePEMAll decodes every PEM block in text, in order.
// At least one block must be present.
func DecodePEMAll(text string) ([]*Block, error) {
	var blocks []*Block
	rest := []byte(text)
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		blocks = append(blocks, newBlock(block))
	}
	if len(blocks) == 0 {
		return nil, ErrInvalidPEMBlock
	}
	return blocks, nil
}

func newBlock(b *pem.Block) *Block {
	return &Block{
		Type:    strings.ToLower(b.Type),
		Headers: b.Headers,
		Data:    b.Bytes,
	}
}

// Codec decodes certificate bundles and encodes certificates back to PEM.
// It maintains internal configuration such as the certificate block type.
type Codec struct {
	certBlockType string
}

// New creates a new Codec with default settings.
func New() *Codec {
	return &Codec{
		certBlockType: "CERTIFICATE",
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Codec) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// DecodeBundle decodes one or more certificates from data.
//
// data may be PEM text holding CERTIFICATE blocks, one or more concatenated
// DER certificates, or a PKCS#7 certs-only bundle.
//
// Parameters:
//   - data: Encoded bundle
//
// Returns:
//   - []*Certificate: Certificates in input order
//   - error: ErrInvalidBlockType for non-certificate PEM blocks, ErrParseCertificate
//     or ErrParsePKCS7 for malformed DER
func (c *Codec) DecodeBundle(data []byte) ([]*Certificate, error) {
	if c.IsPEM(data) {
		var certs []*Certificate

		for len(data) > 0 {
			block, rest := pem.Decode(data)
			if block == nil {
				break
			}
			if block.Type != c.certBlockType {
				return nil, ErrInvalidBlockType
			}

			cert, err := Decode(block.Bytes)
			if err != nil {
				return nil, err
			}

			certs = append(certs, cert)
			data = rest
		}

		return certs, nil
	}

	certs, err := decodeConcatenated(data)
	if err == nil {
		return certs, nil
	}

	// Attempt to parse as PKCS7 using Cloudflare's library
	p, perr := pkcs7.ParsePKCS7(data)
	if perr != nil {
		return nil, err
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}

	certs = make([]*Certificate, 0, len(p.Content.SignedData.Certificates))
	for _, xc := range p.Content.SignedData.Certificates {
		cert, err := Decode(xc.Raw)
		if err != nil {
			return nil, ErrParsePKCS7
		}
		certs = append(certs, cert)
	}

	return certs, nil
}

func decodeConcatenated(data []byte) ([]*Certificate, error) {
	if len(data) == 0 {
		return nil, ErrParseCertificate
	}

	var certs []*Certificate
	input := cryptobyte.String(data)
	for !input.Empty() {
		var elem cryptobyte.String
		if !input.ReadASN1Element(&elem, cryptobyte_asn1.SEQUENCE) {
			return nil, malformed("certificate")
		}
		cert, err := Decode(elem)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// EncodePEM encodes a certificate to PEM format.
func (c *Codec) EncodePEM(cert *Certificate) []byte {
	block := pem.Block{
		Type:  c.certBlockType,
		Bytes: cert.Raw,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeMultiplePEM encodes multiple certificates to PEM format.
func (c *Codec) EncodeMultiplePEM(certs []*Certificate) []byte {
	var buf bytes.Buffer

	for _, cert := range certs {
		buf.Write(c.EncodePEM(cert))
	}

	return buf.Bytes()
}

// EncodeMultipleDER concatenates the DER encodings of certs.
func (c *Codec) EncodeMultipleDER(certs []*Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, cert.Raw...)
	}

	return data
}
