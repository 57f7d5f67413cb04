// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface of the BIP70 chain verifier.
// It implements a Cobra command tree with four subcommands:
//
//   - verify: validate a certificate chain against the configured trust
//     anchors, optionally rendered as a table, ASCII tree or JSON report and
//     written back out as PEM or DER (--output, --der)
//   - fingerprint: print SHA-256 fingerprints for pinning roots, or list the
//     configured anchors (--trusted)
//   - sign: sign a payment request with the chain's end-entity key
//   - verify-sig: check a payment request signature, optionally together
//     with the chain (--full)
//
// Configuration is read through the config package; --log-format and the
// per-command trust flags take precedence over it.
package cli
