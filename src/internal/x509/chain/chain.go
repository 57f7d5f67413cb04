// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"fmt"
	"time"

	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
	x509keys "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/keys"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/pk"
	x509trust "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/trust"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/logger"
)

// Recorder receives one observation per verification.
// outcome is the value of Outcome for the result.
type Recorder interface {
	ObserveChain(outcome string, length int, elapsed time.Duration)
}

// Validator verifies chains against a trust store.
//
// A Validator is read-only after New and safe for concurrent use; the trust
// store it consults guards itself.
type Validator struct {
	store    *x509trust.Store
	clock    func() time.Time
	recorder Recorder
	log      logger.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the time source used by the validity stage.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) { v.clock = clock }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(v *Validator) { v.recorder = r }
}

// WithLogger sets the logger used to report failing stages.
func WithLogger(l logger.Logger) Option {
	return func(v *Validator) { v.log = l }
}

// New creates a Validator over store.
//
// Parameters:
//   - store: Trust store consulted by the trust stage; nil means an empty store
//   - opts: Optional clock, recorder and logger
//
// Returns:
//   - *Validator: New validator (clock time.Now, no recorder, discarding logger)
func New(store *x509trust.Store, opts ...Option) *Validator {
	if store == nil {
		store, _ = x509trust.New()
	}
	v := &Validator{
		store: store,
		clock: time.Now,
		log:   logger.Discard,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Store returns the trust store consulted by v.
func (v *Validator) Store() *x509trust.Store { return v.store }

// VerifyChain decodes raw (leaf first) and verifies it.
//
// Parameters:
//   - raw: DER certificates, leaf first
//
// Returns:
//   - error: nil if the chain is valid, otherwise the first failure:
//     ErrEmptyChain, ErrParse, *TimeValidityError, ErrUnknownAlgorithm,
//     *SignatureError or ErrUntrustedChain
//
// Thread Safety: Safe for concurrent use.
func (v *Validator) VerifyChain(raw [][]byte) error {
	start := time.Now()
	err := v.verifyRaw(raw)
	v.observe(err, len(raw), start)
	return err
}

// VerifyCertificates verifies an already decoded chain. It runs every stage
// of VerifyChain except decoding.
//
// Thread Safety: Safe for concurrent use.
func (v *Validator) VerifyCertificates(chain []*x509certs.Certificate) error {
	start := time.Now()
	err := v.verify(chain)
	v.observe(err, len(chain), start)
	return err
}

func (v *Validator) verifyRaw(raw [][]byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: nothing to verify", ErrEmptyChain)
	}
	chain, err := Decode(raw)
	if err != nil {
		v.log.Printf("chain rejected at decoding: %v", err)
		return err
	}
	return v.verify(chain)
}

// Decode decodes every certificate of raw, in order.
func Decode(raw [][]byte) ([]*x509certs.Certificate, error) {
	chain := make([]*x509certs.Certificate, 0, len(raw))
	for i, der := range raw {
		cert, err := x509certs.Decode(der)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i, err)
		}
		chain = append(chain, cert)
	}
	return chain, nil
}

func (v *Validator) verify(chain []*x509certs.Certificate) error {
	if len(chain) == 0 {
		return fmt.Errorf("%w: nothing to verify", ErrEmptyChain)
	}

	if err := v.checkTimes(chain); err != nil {
		v.log.Printf("chain rejected at validity: %v", err)
		return err
	}
	if err := checkSignatures(chain); err != nil {
		v.log.Printf("chain rejected at signatures: %v", err)
		return err
	}
	if err := v.checkTrust(chain); err != nil {
		v.log.Printf("chain rejected at trust: %v", err)
		return err
	}
	return nil
}

// checkTimes requires notBefore < now < notAfter, in whole seconds.
func (v *Validator) checkTimes(chain []*x509certs.Certificate) error {
	now := v.clock()
	for i, cert := range chain {
		if !validAt(cert, now) {
			return &TimeValidityError{
				Index:     i,
				NotBefore: cert.NotBeforeTime(),
				NotAfter:  cert.NotAfterTime(),
				Now:       now,
			}
		}
	}
	return nil
}

// validAt compares whole Unix seconds. now is truncated first, so an instant
// inside notBefore's second is not yet valid.
func validAt(cert *x509certs.Certificate, now time.Time) bool {
	ts := now.Unix()
	return cert.NotBefore < ts && ts < cert.NotAfter
}

// checkSignatures verifies that chain[i-1] is signed by chain[i].
func checkSignatures(chain []*x509certs.Certificate) error {
	for i := 1; i < len(chain); i++ {
		if err := verifyIssued(chain[i-1], chain[i]); err != nil {
			if sigErr, ok := err.(*SignatureError); ok {
				sigErr.Index = i - 1
			}
			return err
		}
	}
	return nil
}

// verifyIssued checks child's signature with parent's key. The returned
// *SignatureError has no index set.
func verifyIssued(child, parent *x509certs.Certificate) error {
	alg, err := x509alg.LookupBySigOID(child.SignatureAlgorithmOID)
	if err != nil {
		return err
	}
	key, err := x509keys.PublicKeyOf(parent)
	if err != nil {
		return err
	}
	if key.Kind != alg.Key {
		return &SignatureError{
			KeyKind: alg.Key,
			Err:     fmt.Errorf("issuer key is %s", key.Kind),
		}
	}

	ok, err := pk.Verify(alg.Hash, child.TBSRaw, child.Signature, key)
	if err != nil {
		return &SignatureError{KeyKind: alg.Key, Err: err}
	}
	if !ok {
		return &SignatureError{KeyKind: alg.Key}
	}
	return nil
}

// IsSelfSigned reports whether cert's signature verifies with its own key.
func IsSelfSigned(cert *x509certs.Certificate) bool {
	return verifyIssued(cert, cert) == nil
}

func (v *Validator) checkTrust(chain []*x509certs.Certificate) error {
	if v.store.AllowUntrusted() {
		return nil
	}
	for _, cert := range chain {
		if v.store.IsTrusted(cert) {
			return nil
		}
	}
	return ErrUntrustedChain
}

func (v *Validator) observe(err error, length int, start time.Time) {
	if v.recorder != nil {
		v.recorder.ObserveChain(Outcome(err), length, time.Since(start))
	}
}
