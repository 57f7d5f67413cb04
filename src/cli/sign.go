// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/helper/gc"
	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509chain "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/payment"
)

type signatureFlags struct {
	hash     string
	chain    []string
	message  string
	key      string
	password string
	sig      string
	full     bool
	roots    []string
	allow    bool
}

func (f *signatureFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.hash, "hash", "sha256", "digest: md2, md4, md5, sha1, sha224, sha256, sha384 or sha512")
	cmd.Flags().StringArrayVar(&f.chain, "chain", nil, "certificate chain file, leaf first (repeatable)")
	cmd.Flags().StringVar(&f.message, "message", "", "file holding the serialized payment request")
	_ = cmd.MarkFlagRequired("chain")
	_ = cmd.MarkFlagRequired("message")
}

func (f *signatureFlags) inputs(cmd *cobra.Command) (x509alg.HashKind, []byte, [][]byte, error) {
	hash, err := x509alg.ParseHashKind(f.hash)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("--hash: %w", err)
	}
	msg, err := gc.ReadFile(f.message)
	if err != nil {
		return 0, nil, nil, err
	}
	chain, err := readChain(cmd.Context(), f.chain)
	if err != nil {
		return 0, nil, nil, err
	}
	return hash, msg, rawChain(chain), nil
}

func (a *app) newSignCommand() *cobra.Command {
	f := &signatureFlags{}

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a payment request with the chain's end-entity key and print the hex signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.begin()
			hash, msg, chain, err := f.inputs(cmd)
			if err != nil {
				return a.done(err)
			}
			key, err := readKey(f.key, f.password)
			if err != nil {
				return a.done(err)
			}
			sig, err := payment.NewSigner(a.paymentOptions()...).Sign(hash, msg, key, chain)
			if err != nil {
				return a.done(err)
			}
			writeLine(cmd.OutOrStdout(), "%s", hex.EncodeToString(sig))
			return a.done(nil)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.key, "key", "", "private key file (PEM, or raw key material for the leaf's algorithm)")
	cmd.Flags().StringVar(&f.password, "password", "", "password of an encrypted PKCS#8 key")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func (a *app) newVerifySigCommand() *cobra.Command {
	f := &signatureFlags{}

	cmd := &cobra.Command{
		Use:   "verify-sig",
		Short: "Verify a payment request signature against the chain's end-entity key",
		Long: `verify-sig checks the signature only. With --full the chain is verified
first, exactly as the verify command does.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.begin()
			return a.done(a.runVerifySig(cmd, f))
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.sig, "sig", "", "hex encoded signature")
	cmd.Flags().BoolVar(&f.full, "full", false, "also verify the chain against the trusted roots")
	cmd.Flags().StringArrayVar(&f.roots, "trust", nil, "with --full, trust every certificate in FILE (repeatable)")
	cmd.Flags().BoolVar(&f.allow, "allow-untrusted", false, "with --full, accept chains without a trusted certificate")
	_ = cmd.MarkFlagRequired("sig")
	return cmd
}

func (a *app) runVerifySig(cmd *cobra.Command, f *signatureFlags) error {
	hash, msg, chain, err := f.inputs(cmd)
	if err != nil {
		return err
	}
	sig, err := decodeHex("sig", f.sig)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := a.paymentOptions()

	if f.full {
		store, err := a.trustStore(f.roots, nil, f.allow || a.cfg.Trust.AllowUntrusted)
		if err != nil {
			return err
		}
		verifier := payment.NewVerifier(a.validator(store), opts...)
		if err := verifier.VerifyRequest(hash, msg, sig, chain); err != nil {
			color.New(color.FgRed, color.Bold).Fprint(out, "✗ INVALID")
			writeLine(out, " %v", err)
			return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
		}
		if anchors := verifier.Validator().Store(); anchors.AllowUntrusted() {
			certs, err := x509chain.Decode(chain)
			if err != nil {
				return err
			}
			if !anyTrusted(anchors.IsTrusted, certs) {
				warnUntrusted(cmd)
			}
		}
	} else {
		ok, err := payment.NewVerifier(nil, opts...).Verify(hash, msg, sig, chain)
		if err != nil {
			return err
		}
		if !ok {
			color.New(color.FgRed, color.Bold).Fprintln(out, "✗ INVALID signature")
			return ErrSignatureInvalid
		}
	}

	color.New(color.FgGreen, color.Bold).Fprint(out, "✓ VALID")
	writeLine(out, " signature by %s", chainSubject(chain))
	return nil
}

func chainSubject(chain [][]byte) string {
	if len(chain) == 0 {
		return "unknown signer"
	}
	name, err := payment.CAName(chain[:1])
	if err != nil {
		return "unknown signer"
	}
	return name
}
