// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// bip70-chain-verifier is a command-line tool for verifying the X.509
// certificate chains that vouch for BIP70 payment requests, and for signing
// and verifying payment requests with a chain's end-entity key.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/bip70-chain-verifier/cmd/bip70-chain-verifier@latest
//
// # Usage
//
//	bip70-chain-verifier [GLOBAL FLAGS] COMMAND [FLAGS]
//
// # Global Flags
//
//	-c, --config      Configuration file (.json, .yaml, .yml)
//	    --log-format  Log format: text or json
//	-v, --verbose     Log why chains and signatures are rejected
//	    --metrics     Print collected metrics after the command
//
// # Commands
//
//	verify CHAIN_FILE...   Verify a chain, leaf first
//	                       (--trust, --fingerprint, --allow-untrusted,
//	                       --table, --tree, --json)
//	fingerprint FILE...    Print SHA-256 fingerprints
//	sign                   Sign a payment request (--hash, --key, --chain, --message)
//	verify-sig             Verify a payment request signature
//	                       (--hash, --chain, --message, --sig, --full)
//
// # Examples
//
// Pin a root and verify a merchant chain:
//
//	bip70-chain-verifier fingerprint root.pem
//	bip70-chain-verifier verify --fingerprint 3f1c...a9 merchant-chain.pem
//
// Sign and check a serialized payment request:
//
//	sig=$(bip70-chain-verifier sign --key merchant.key --chain merchant-chain.pem --message request.bin)
//	bip70-chain-verifier verify-sig --full --trust root.pem --chain merchant-chain.pem --message request.bin --sig "$sig"
//
// The process exits with status 1 when a chain or signature is rejected.
package main
