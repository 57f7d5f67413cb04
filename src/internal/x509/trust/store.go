// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509trust

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
)

// ErrInvalidFingerprint indicates a fingerprint that is neither 32 raw bytes
// nor 64 hex characters.
var ErrInvalidFingerprint = errors.New("x509trust: invalid fingerprint")

// Item is a certificate or fingerprint handed to the store: a string (PEM
// text or hex) or a []byte (DER or raw digest). Other types are rejected.
type Item = any

// Store is a concurrency-safe set of trusted fingerprints.
type Store struct {
	mu             sync.RWMutex
	fingerprints   map[string]struct{}
	allowUntrusted bool
	codec          *x509certs.Codec
}

// Option configures a Store.
type Option func(*Store) error

// WithFingerprints seeds the store with hex or raw fingerprints.
func WithFingerprints(items ...Item) Option {
	return func(s *Store) error {
		return s.AddFingerprints(items...)
	}
}

// WithAllowUntrusted sets the allowUntrusted flag.
func WithAllowUntrusted(allow bool) Option {
	return func(s *Store) error {
		s.allowUntrusted = allow
		return nil
	}
}

// New creates a store and applies opts in order.
//
// Returns:
//   - *Store: The configured store
//   - error: The first option error
func New(opts ...Option) (*Store, error) {
	s := &Store{
		fingerprints: make(map[string]struct{}),
		codec:        x509certs.New(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddCertificates marks every certificate in items as trusted.
//
// A string item is PEM text and may hold several blocks; each must be a
// CERTIFICATE. A []byte item is DER: a single certificate, several
// concatenated ones or a PKCS#7 certs-only bundle. Every certificate must
// decode.
//
// Parameters:
//   - items: Certificates to trust
//
// Returns:
//   - error: x509certs.ErrParse (wrapped) on the first bad item; the store is
//     left unchanged
//
// Thread Safety: Safe for concurrent use.
func (s *Store) AddCertificates(items ...Item) error {
	pending := make([]string, 0, len(items))
	for i, item := range items {
		certs, err := s.decodeItem(item)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		for _, cert := range certs {
			pending = append(pending, cert.Fingerprint())
		}
	}
	s.commit(pending)
	return nil
}

func (s *Store) decodeItem(item Item) ([]*x509certs.Certificate, error) {
	switch v := item.(type) {
	case string:
		blocks, err := x509certs.DecodePEMAll(v)
		if err != nil {
			return nil, err
		}
		certs := make([]*x509certs.Certificate, 0, len(blocks))
		for _, b := range blocks {
			if b.Type != x509certs.BlockTypeCertificate {
				return nil, fmt.Errorf("%w: %q", x509certs.ErrInvalidBlockType, b.Type)
			}
			cert, err := x509certs.Decode(b.Data)
			if err != nil {
				return nil, err
			}
			certs = append(certs, cert)
		}
		return certs, nil
	case []byte:
		return s.codec.DecodeBundle(v)
	default:
		return nil, fmt.Errorf("%w: unsupported item %T", x509certs.ErrParse, item)
	}
}

// AddFingerprints marks fingerprints as trusted. Each item is either 32 raw
// bytes or 64 hex characters (either case).
//
// Returns:
//   - error: ErrInvalidFingerprint on the first bad item; the store is left
//     unchanged
//
// Thread Safety: Safe for concurrent use.
func (s *Store) AddFingerprints(items ...Item) error {
	pending := make([]string, 0, len(items))
	for i, item := range items {
		fp, err := normalize(item)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		pending = append(pending, fp)
	}
	s.commit(pending)
	return nil
}

func normalize(item Item) (string, error) {
	switch v := item.(type) {
	case []byte:
		if len(v) != sha256.Size {
			return "", fmt.Errorf("%w: %d bytes", ErrInvalidFingerprint, len(v))
		}
		return hex.EncodeToString(v), nil
	case string:
		if len(v) != sha256.Size*2 {
			return "", fmt.Errorf("%w: %d characters", ErrInvalidFingerprint, len(v))
		}
		fp := strings.ToLower(v)
		if _, err := hex.DecodeString(fp); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
		}
		return fp, nil
	default:
		return "", fmt.Errorf("%w: unsupported item %T", ErrInvalidFingerprint, item)
	}
}

func (s *Store) commit(fps []string) {
	if len(fps) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fp := range fps {
		s.fingerprints[fp] = struct{}{}
	}
}

// LoadFiles reads certificate bundles (PEM, DER or PKCS#7) from disk and
// trusts every certificate in them.
//
// All files are decoded before any fingerprint is added.
func (s *Store) LoadFiles(paths ...string) error {
	var pending []string
	for _, path := range paths {
		data, err := gc.ReadFile(path)
		if err != nil {
			return err
		}

		certs, err := s.codec.DecodeBundle(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, cert := range certs {
			pending = append(pending, cert.Fingerprint())
		}
	}
	s.commit(pending)
	return nil
}

// IsTrusted reports whether cert's fingerprint is in the store.
func (s *Store) IsTrusted(cert *x509certs.Certificate) bool {
	return s.Contains(cert.Fingerprint())
}

// Contains reports whether the hex fingerprint is in the store. Lookup is
// case-insensitive.
func (s *Store) Contains(fingerprint string) bool {
	fp := strings.ToLower(fingerprint)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fingerprints[fp]
	return ok
}

// Len returns the number of trusted fingerprints.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fingerprints)
}

// Fingerprints returns a sorted snapshot of the trusted fingerprints.
func (s *Store) Fingerprints() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.fingerprints))
	for fp := range s.fingerprints {
		out = append(out, fp)
	}
	s.mu.RUnlock()

	slices.Sort(out)
	return out
}

// SetAllowUntrusted sets whether chains with no trusted member pass.
func (s *Store) SetAllowUntrusted(allow bool) {
	s.mu.Lock()
	s.allowUntrusted = allow
	s.mu.Unlock()
}

// AllowUntrusted reports the allowUntrusted flag.
func (s *Store) AllowUntrusted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowUntrusted
}
