// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package payment

import (
	"errors"
	"fmt"
	"time"

	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509chain "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/chain"
	x509keys "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/keys"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/pk"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/logger"
)

// ErrInvalidSignature indicates a well-formed signature that does not verify
// under the chain's end-entity key.
var ErrInvalidSignature = errors.New("payment: signature does not verify")

// Operation and status labels passed to a Recorder.
const (
	OpSign   = "sign"
	OpVerify = "verify"

	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusError   = "error"
)

// Recorder receives one observation per sign or verify call.
type Recorder interface {
	ObserveSignature(operation, status string, elapsed time.Duration)
}

// Sign signs msg with the end-entity identity of chain.
//
// Parameters:
//   - hash: Digest applied to msg before signing
//   - msg: Serialized payment request
//   - key: x509keys.EncodedKey or x509keys.RawKey
//   - chain: DER certificates, leaf first
//
// Returns:
//   - []byte: Signature in the scheme of the resolved key
//   - error: Decode, key resolution or signing failure
func Sign(hash x509alg.HashKind, msg []byte, key x509keys.PrivateKeyInput, chain [][]byte) ([]byte, error) {
	certs, err := x509chain.Decode(chain)
	if err != nil {
		return nil, err
	}
	priv, err := x509keys.ResolveSigningKey(key, certs)
	if err != nil {
		return nil, err
	}
	return pk.Sign(hash, msg, priv)
}

// Verify checks sig over msg against the public key of chain[0].
//
// The chain itself is not validated. A signature that is well formed but
// wrong yields false with a nil error.
func Verify(hash x509alg.HashKind, msg, sig []byte, chain [][]byte) (bool, error) {
	certs, err := x509chain.Decode(chain)
	if err != nil {
		return false, err
	}
	pub, err := x509keys.ResolveVerifyKey(certs)
	if err != nil {
		return false, err
	}
	return pk.Verify(hash, msg, sig, pub)
}

// CAName returns the display name of the authority vouching for chain,
// taken from its last certificate.
func CAName(chain [][]byte) (string, error) {
	if len(chain) == 0 {
		return "", fmt.Errorf("%w: no authority to name", x509chain.ErrEmptyChain)
	}
	certs, err := x509chain.Decode(chain[len(chain)-1:])
	if err != nil {
		return "", err
	}
	return certs[0].CAName(), nil
}

// Option configures a Signer or Verifier.
type Option func(*options)

type options struct {
	recorder Recorder
	log      logger.Logger
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithLogger sets the logger used to report failed operations.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func newOptions(opts []Option) options {
	o := options{log: logger.Discard}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Discard
	}
	return o
}

func (o options) observe(op, status string, start time.Time) {
	if o.recorder != nil {
		o.recorder.ObserveSignature(op, status, time.Since(start))
	}
}

// Signer signs payment requests and records every call.
type Signer struct {
	opts options
}

// NewSigner creates a Signer.
func NewSigner(opts ...Option) *Signer {
	return &Signer{opts: newOptions(opts)}
}

// Sign is the package-level Sign with recording.
func (s *Signer) Sign(hash x509alg.HashKind, msg []byte, key x509keys.PrivateKeyInput, chain [][]byte) ([]byte, error) {
	start := time.Now()
	sig, err := Sign(hash, msg, key, chain)
	if err != nil {
		s.opts.log.Printf("payment sign failed: %v", err)
		s.opts.observe(OpSign, StatusError, start)
		return nil, err
	}
	s.opts.observe(OpSign, StatusSuccess, start)
	return sig, nil
}

// Verifier verifies payment requests, optionally together with the chain
// that vouches for them.
//
// A Verifier is safe for concurrent use.
type Verifier struct {
	validator *x509chain.Validator
	opts      options
}

// NewVerifier creates a Verifier that validates chains with validator.
// A nil validator is an x509chain.Validator over an empty trust store.
func NewVerifier(validator *x509chain.Validator, opts ...Option) *Verifier {
	if validator == nil {
		validator = x509chain.New(nil)
	}
	return &Verifier{validator: validator, opts: newOptions(opts)}
}

// Validator returns the chain validator in use.
func (v *Verifier) Validator() *x509chain.Validator { return v.validator }

// Verify is the package-level Verify with recording.
func (v *Verifier) Verify(hash x509alg.HashKind, msg, sig []byte, chain [][]byte) (bool, error) {
	start := time.Now()
	ok, err := Verify(hash, msg, sig, chain)
	switch {
	case err != nil:
		v.opts.log.Printf("payment verify failed: %v", err)
		v.opts.observe(OpVerify, StatusError, start)
	case !ok:
		v.opts.observe(OpVerify, StatusFailure, start)
	default:
		v.opts.observe(OpVerify, StatusSuccess, start)
	}
	return ok, err
}

// VerifyRequest validates chain and then checks sig over msg with its
// end-entity key.
//
// Returns:
//   - error: The chain validation error, a decode or key error, or
//     ErrInvalidSignature; nil when both checks pass
func (v *Verifier) VerifyRequest(hash x509alg.HashKind, msg, sig []byte, chain [][]byte) error {
	if err := v.validator.VerifyChain(chain); err != nil {
		return err
	}
	ok, err := v.Verify(hash, msg, sig, chain)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}
