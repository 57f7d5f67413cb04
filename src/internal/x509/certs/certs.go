// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/sha256"
	"encoding/asn1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrParse is the umbrella error for malformed DER or PEM input.
	// Every decoding error in this package matches it with errors.Is.
	ErrParse = errors.New("x509certs: parse error")

	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = fmt.Errorf("%w: invalid PEM block", ErrParse)

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = fmt.Errorf("%w: invalid block type", ErrParse)

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = fmt.Errorf("%w: failed to parse certificate", ErrParse)

	// ErrParseOID indicates that the data is not a single DER encoded OBJECT IDENTIFIER.
	ErrParseOID = fmt.Errorf("%w: failed to parse OID", ErrParse)

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = fmt.Errorf("%w: failed to parse PKCS7 data", ErrParse)

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = fmt.Errorf("%w: no certificates found in PKCS7 data", ErrParse)
)

// Subject attribute OIDs used to derive a display name.
const (
	OIDCommonName         = "2.5.4.3"
	OIDOrganization       = "2.5.4.10"
	OIDOrganizationalUnit = "2.5.4.11"
)

// AttributeTypeValue is one (type, value) pair of a distinguished name,
// kept in encoding order.
type AttributeTypeValue struct {
	OID   string
	Value string
}

// PublicKeyInfo is the decoded SubjectPublicKeyInfo.
type PublicKeyInfo struct {
	// AlgorithmOID is the dotted-decimal key algorithm.
	AlgorithmOID string
	// Parameters is the full DER element of the algorithm parameters, or nil
	// when they are absent or an ASN.1 NULL.
	Parameters []byte
	// PublicKey is the content of the subjectPublicKey BIT STRING.
	PublicKey []byte
}

// Certificate is an immutable decoded [X.509] certificate.
//
// Only the fields needed for chain verification are exposed. Extensions are
// skipped.
//
// [X.509]: https://grokipedia.com/page/X.509
type Certificate struct {
	// Raw is the complete DER encoding.
	Raw []byte
	// TBSRaw is the exact tbsCertificate element covered by the issuer signature.
	TBSRaw []byte
	// Subject holds the subject attributes in encoding order.
	Subject []AttributeTypeValue
	// NotBefore and NotAfter are Unix seconds.
	NotBefore int64
	NotAfter  int64

	PublicKeyInfo         PublicKeyInfo
	SignatureAlgorithmOID string
	Signature             []byte
}

// Fingerprint returns the lowercase hex sha256 digest of raw.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns the trust-store key of the certificate.
func (c *Certificate) Fingerprint() string { return Fingerprint(c.Raw) }

// SubjectValue returns the first subject value for oid.
func (c *Certificate) SubjectValue(oid string) (string, bool) {
	for _, atv := range c.Subject {
		if atv.OID == oid {
			return atv.Value, true
		}
	}
	return "", false
}

// CAName returns a human readable name for the certificate holder.
//
// commonName is preferred, then organizationalUnitName, then
// organizationName. "Unknown" is returned when none is present.
func (c *Certificate) CAName() string {
	for _, oid := range []string{OIDCommonName, OIDOrganizationalUnit, OIDOrganization} {
		if v, ok := c.SubjectValue(oid); ok {
			return v
		}
	}
	return "Unknown"
}

// NotBeforeTime returns NotBefore as a UTC time.
func (c *Certificate) NotBeforeTime() time.Time { return time.Unix(c.NotBefore, 0).UTC() }

// NotAfterTime returns NotAfter as a UTC time.
func (c *Certificate) NotAfterTime() time.Time { return time.Unix(c.NotAfter, 0).UTC() }

// Decode parses a single DER encoded certificate.
//
// Trailing data after the certificate is rejected. The returned certificate
// owns copies of every byte slice, so der may be reused by the caller.
//
// Parameters:
//   - der: DER encoded certificate
//
// Returns:
//   - *Certificate: Decoded certificate
//   - error: ErrParseCertificate (wrapping ErrParse) with a short reason
func Decode(der []byte) (*Certificate, error) {
	input := cryptobyte.String(der)

	var elem cryptobyte.String
	if !input.ReadASN1Element(&elem, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return nil, malformed("certificate")
	}

	c := &Certificate{Raw: clone(elem)}

	var body cryptobyte.String
	if !elem.ReadASN1(&body, cryptobyte_asn1.SEQUENCE) {
		return nil, malformed("certificate")
	}

	var tbsElem cryptobyte.String
	if !body.ReadASN1Element(&tbsElem, cryptobyte_asn1.SEQUENCE) {
		return nil, malformed("tbsCertificate")
	}
	c.TBSRaw = clone(tbsElem)

	if err := c.parseTBS(tbsElem); err != nil {
		return nil, err
	}

	var sigAlg cryptobyte.String
	if !body.ReadASN1(&sigAlg, cryptobyte_asn1.SEQUENCE) {
		return nil, malformed("signatureAlgorithm")
	}
	oid, ok := readOID(&sigAlg)
	if !ok {
		return nil, malformed("signatureAlgorithm")
	}
	c.SignatureAlgorithmOID = oid

	var sig asn1.BitString
	if !body.ReadASN1BitString(&sig) || !body.Empty() {
		return nil, malformed("signatureValue")
	}
	c.Signature = clone(sig.RightAlign())

	return c, nil
}

func (c *Certificate) parseTBS(elem cryptobyte.String) error {
	var tbs cryptobyte.String
	if !elem.ReadASN1(&tbs, cryptobyte_asn1.SEQUENCE) {
		return malformed("tbsCertificate")
	}

	if !tbs.SkipOptionalASN1(cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()) {
		return malformed("version")
	}
	if !tbs.SkipASN1(cryptobyte_asn1.INTEGER) {
		return malformed("serialNumber")
	}
	if !tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) {
		return malformed("signature")
	}
	if !tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) {
		return malformed("issuer")
	}

	var validity cryptobyte.String
	if !tbs.ReadASN1(&validity, cryptobyte_asn1.SEQUENCE) {
		return malformed("validity")
	}
	notBefore, err := readTime(&validity)
	if err != nil {
		return err
	}
	notAfter, err := readTime(&validity)
	if err != nil {
		return err
	}
	c.NotBefore, c.NotAfter = notBefore.Unix(), notAfter.Unix()

	var subject cryptobyte.String
	if !tbs.ReadASN1(&subject, cryptobyte_asn1.SEQUENCE) {
		return malformed("subject")
	}
	if c.Subject, err = parseName(subject); err != nil {
		return err
	}

	var spki cryptobyte.String
	if !tbs.ReadASN1(&spki, cryptobyte_asn1.SEQUENCE) {
		return malformed("subjectPublicKeyInfo")
	}
	return c.parsePublicKeyInfo(spki)
}

func (c *Certificate) parsePublicKeyInfo(spki cryptobyte.String) error {
	var algID cryptobyte.String
	if !spki.ReadASN1(&algID, cryptobyte_asn1.SEQUENCE) {
		return malformed("subjectPublicKeyInfo algorithm")
	}
	oid, ok := readOID(&algID)
	if !ok {
		return malformed("subjectPublicKeyInfo algorithm")
	}
	c.PublicKeyInfo.AlgorithmOID = oid

	if !algID.Empty() {
		var params cryptobyte.String
		var tag cryptobyte_asn1.Tag
		if !algID.ReadAnyASN1Element(&params, &tag) {
			return malformed("subjectPublicKeyInfo parameters")
		}
		if tag != cryptobyte_asn1.NULL {
			c.PublicKeyInfo.Parameters = clone(params)
		}
	}

	var key asn1.BitString
	if !spki.ReadASN1BitString(&key) {
		return malformed("subjectPublicKey")
	}
	c.PublicKeyInfo.PublicKey = clone(key.RightAlign())
	return nil
}

// ParseOID decodes a DER encoded OBJECT IDENTIFIER element into its
// dotted-decimal form.
func ParseOID(der []byte) (string, error) {
	s := cryptobyte.String(der)
	oid, ok := readOID(&s)
	if !ok || !s.Empty() {
		return "", ErrParseOID
	}
	return oid, nil
}

func readOID(s *cryptobyte.String) (string, bool) {
	var oid asn1.ObjectIdentifier
	if !s.ReadASN1ObjectIdentifier(&oid) {
		return "", false
	}
	return oid.String(), true
}

func readTime(s *cryptobyte.String) (time.Time, error) {
	var t time.Time
	switch {
	case s.PeekASN1Tag(cryptobyte_asn1.UTCTime):
		if !s.ReadASN1UTCTime(&t) {
			return t, malformed("UTCTime")
		}
	case s.PeekASN1Tag(cryptobyte_asn1.GeneralizedTime):
		if !s.ReadASN1GeneralizedTime(&t) {
			return t, malformed("GeneralizedTime")
		}
	default:
		return t, malformed("validity time")
	}
	return t, nil
}

// bmpString is the universal tag of BMPString, which cryptobyte does not name.
const bmpString = cryptobyte_asn1.Tag(30)

func parseName(name cryptobyte.String) ([]AttributeTypeValue, error) {
	var out []AttributeTypeValue
	for !name.Empty() {
		var rdn cryptobyte.String
		if !name.ReadASN1(&rdn, cryptobyte_asn1.SET) {
			return nil, malformed("relative distinguished name")
		}
		for !rdn.Empty() {
			var atv cryptobyte.String
			if !rdn.ReadASN1(&atv, cryptobyte_asn1.SEQUENCE) {
				return nil, malformed("attribute")
			}
			oid, ok := readOID(&atv)
			if !ok {
				return nil, malformed("attribute type")
			}
			var value cryptobyte.String
			var tag cryptobyte_asn1.Tag
			if !atv.ReadAnyASN1(&value, &tag) {
				return nil, malformed("attribute value")
			}
			s, err := decodeString(tag, value)
			if err != nil {
				return nil, err
			}
			out = append(out, AttributeTypeValue{OID: oid, Value: s})
		}
	}
	return out, nil
}

func decodeString(tag cryptobyte_asn1.Tag, value []byte) (string, error) {
	if tag == bmpString {
		b, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(value)
		if err != nil {
			return "", malformed("BMPString")
		}
		return string(b), nil
	}
	// PrintableString, UTF8String, IA5String, T61String and anything else
	// are surfaced as their raw octets.
	return string(value), nil
}

func malformed(what string) error {
	return fmt.Errorf("%w: malformed %s", ErrParseCertificate, what)
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }
