// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
)

type verifyFlags struct {
	allowUntrusted bool
	roots          []string
	fingerprints   []string
	table          bool
	tree           bool
	json           bool
	output         string
	der            bool
}

func (a *app) newVerifyCommand() *cobra.Command {
	f := &verifyFlags{}

	cmd := &cobra.Command{
		Use:   "verify CHAIN_FILE...",
		Short: "Verify a certificate chain, leaf first, against the trusted roots",
		Long: `Verify checks that every certificate is inside its validity window, that
each certificate is signed by the next one and that at least one of them is
trusted. Files may be PEM bundles, DER or PKCS#7 and are concatenated in order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.begin()
			return a.done(a.runVerify(cmd, args, f))
		},
	}

	cmd.Flags().BoolVar(&f.allowUntrusted, "allow-untrusted", false, "accept chains without a trusted certificate")
	cmd.Flags().StringArrayVar(&f.roots, "trust", nil, "trust every certificate in FILE (repeatable)")
	cmd.Flags().StringArrayVar(&f.fingerprints, "fingerprint", nil, "trust the certificate with this SHA-256 fingerprint (repeatable)")
	cmd.Flags().BoolVar(&f.table, "table", false, "display the chain as a markdown table")
	cmd.Flags().BoolVarP(&f.tree, "tree", "t", false, "display the chain as an ASCII tree")
	cmd.Flags().BoolVarP(&f.json, "json", "j", false, "emit a JSON report")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the verified chain to FILE")
	cmd.Flags().BoolVarP(&f.der, "der", "d", false, "with --output, write DER instead of PEM")
	cmd.MarkFlagsMutuallyExclusive("table", "tree", "json")
	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, args []string, f *verifyFlags) error {
	chain, err := readChain(cmd.Context(), args)
	if err != nil {
		return err
	}
	store, err := a.trustStore(f.roots, f.fingerprints, f.allowUntrusted || a.cfg.Trust.AllowUntrusted)
	if err != nil {
		return err
	}
	v := a.validator(store)
	out := cmd.OutOrStdout()

	if f.table || f.tree || f.json {
		report, err := v.Inspect(rawChain(chain))
		if err != nil {
			return err
		}
		switch {
		case f.json:
			data, err := report.ToJSON()
			if err != nil {
				return err
			}
			writeLine(out, "%s", data)
		case f.table:
			fmt.Fprint(out, report.RenderTable())
		default:
			fmt.Fprint(out, report.RenderASCIITree())
		}
		if report.Verdict != nil {
			return fmt.Errorf("%w: %w", ErrChainInvalid, report.Verdict)
		}
		return nil
	}

	if err := v.VerifyChain(rawChain(chain)); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(out, "✗ INVALID")
		writeLine(out, " %v", err)
		return fmt.Errorf("%w: %w", ErrChainInvalid, err)
	}

	color.New(color.FgGreen, color.Bold).Fprint(out, "✓ VALID")
	writeLine(out, " %d certificate(s), vouched for by %s", len(chain), chain[len(chain)-1].CAName())
	if store.AllowUntrusted() && !anyTrusted(store.IsTrusted, chain) {
		warnUntrusted(cmd)
	}
	return writeChain(f, chain)
}

// writeChain saves the verified chain to --output, leaf first.
func writeChain(f *verifyFlags, chain []*x509certs.Certificate) error {
	if f.output == "" {
		return nil
	}

	codec := x509certs.New()
	var data []byte
	if f.der {
		data = codec.EncodeMultipleDER(chain)
	} else {
		data = codec.EncodeMultiplePEM(chain)
	}
	if err := os.WriteFile(f.output, data, 0644); err != nil {
		return fmt.Errorf("--output: %w", err)
	}
	return nil
}

func warnUntrusted(cmd *cobra.Command) {
	color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "! no certificate in the chain is trusted; accepted because untrusted chains are allowed")
}

func anyTrusted(isTrusted func(*x509certs.Certificate) bool, chain []*x509certs.Certificate) bool {
	for _, cert := range chain {
		if isTrusted(cert) {
			return true
		}
	}
	return false
}

type fingerprintFlags struct {
	pem     bool
	trusted bool
}

func (a *app) newFingerprintCommand() *cobra.Command {
	f := &fingerprintFlags{}

	cmd := &cobra.Command{
		Use:   "fingerprint [FILE...]",
		Short: "Print the SHA-256 fingerprint and name of every certificate",
		Long: `Fingerprint prints one line per certificate found in FILE. With --trusted
it lists the fingerprints of the configured trust anchors instead.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if f.trusted {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.begin()
			if f.trusted {
				return a.done(a.listTrusted(cmd))
			}
			return a.done(a.runFingerprint(cmd, args, f))
		},
	}

	cmd.Flags().BoolVar(&f.pem, "pem", false, "print each certificate in PEM form after its fingerprint")
	cmd.Flags().BoolVar(&f.trusted, "trusted", false, "list the fingerprints of the configured trust anchors")
	cmd.MarkFlagsMutuallyExclusive("pem", "trusted")
	return cmd
}

func (a *app) runFingerprint(cmd *cobra.Command, args []string, f *fingerprintFlags) error {
	chain, err := readChain(cmd.Context(), args)
	if err != nil {
		return err
	}
	codec := x509certs.New()
	out := cmd.OutOrStdout()
	for _, cert := range chain {
		writeLine(out, "%s  %s", cert.Fingerprint(), cert.CAName())
		if f.pem {
			out.Write(codec.EncodePEM(cert))
		}
	}
	return nil
}

func (a *app) listTrusted(cmd *cobra.Command) error {
	store, err := a.trustStore(nil, nil, false)
	if err != nil {
		return err
	}
	for _, fp := range store.Fingerprints() {
		writeLine(cmd.OutOrStdout(), "%s", fp)
	}
	return nil
}
