// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"errors"
	"fmt"
	"time"

	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
	x509keys "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/keys"
)

var (
	// ErrExpiredOrNotYetValid indicates a certificate outside its validity window.
	ErrExpiredOrNotYetValid = errors.New("x509chain: invalid certificate times")

	// ErrSignatureVerification indicates a certificate not signed by its successor.
	ErrSignatureVerification = errors.New("x509chain: signature verification failed")

	// ErrUntrustedChain indicates that no certificate of the chain is trusted.
	ErrUntrustedChain = errors.New("x509chain: certificate chain is untrusted")
)

// Errors surfaced unchanged from the packages the validator builds on.
var (
	ErrEmptyChain       = x509keys.ErrEmptyChain
	ErrParse            = x509certs.ErrParse
	ErrUnknownAlgorithm = x509alg.ErrUnknownAlgorithm
)

// TimeValidityError reports the first certificate whose validity window does
// not strictly contain the verification time.
type TimeValidityError struct {
	Index     int
	NotBefore time.Time
	NotAfter  time.Time
	Now       time.Time
}

func (e *TimeValidityError) Error() string {
	return fmt.Sprintf("%v: certificate %d valid from %s to %s, checked at %s",
		ErrExpiredOrNotYetValid, e.Index,
		e.NotBefore.UTC().Format(time.RFC3339),
		e.NotAfter.UTC().Format(time.RFC3339),
		e.Now.UTC().Format(time.RFC3339))
}

// Is matches ErrExpiredOrNotYetValid.
func (e *TimeValidityError) Is(target error) bool { return target == ErrExpiredOrNotYetValid }

// SignatureError reports that certificate Index is not signed by certificate
// Index+1.
//
// Err is set when the check could not run at all, for example because the
// hash is unsupported or the issuer key is of another kind than the
// signature algorithm.
type SignatureError struct {
	Index   int
	KeyKind x509alg.KeyKind
	Err     error
}

func (e *SignatureError) Error() string {
	msg := fmt.Sprintf("%v: %s signature of certificate %d", ErrSignatureVerification, e.KeyKind, e.Index)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrSignatureVerification.
func (e *SignatureError) Is(target error) bool { return target == ErrSignatureVerification }

// Unwrap returns the underlying cause, if any.
func (e *SignatureError) Unwrap() error { return e.Err }

// Outcome classifies a verification result for metrics labels.
//
// Returns one of "ok", "empty", "parse", "time", "algorithm", "curve",
// "signature", "untrusted" or "error".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyChain):
		return "empty"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrExpiredOrNotYetValid):
		return "time"
	case errors.Is(err, ErrSignatureVerification):
		return "signature"
	case errors.Is(err, ErrUnknownAlgorithm):
		return "algorithm"
	case errors.Is(err, x509alg.ErrUnknownCurve), errors.Is(err, x509keys.ErrMissingCurveParameters):
		return "curve"
	case errors.Is(err, ErrUntrustedChain):
		return "untrusted"
	default:
		return "error"
	}
}
