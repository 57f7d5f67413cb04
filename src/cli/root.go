// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/config"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/helper/posix"
	x509chain "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/chain"
	x509trust "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/trust"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/logger"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/metrics"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/payment"
)

var (
	// OperationPerformed is set once a subcommand starts its work.
	OperationPerformed bool
	// OperationPerformedSuccessfully is set when that work succeeds.
	OperationPerformedSuccessfully bool
)

var (
	// ErrChainInvalid is returned by verify when the chain is rejected.
	ErrChainInvalid = errors.New("certificate chain rejected")
	// ErrSignatureInvalid is returned by verify-sig when the signature does not verify.
	ErrSignatureInvalid = errors.New("signature rejected")
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	configPath   string
	logFormat    string
	verbose      bool
	printMetrics bool

	cfg      *config.Config
	log      logger.Logger
	recorder *metrics.Recorder
}

// Execute runs the root command with the process arguments.
//
// Parameters:
//   - ctx: Cancelled on SIGINT or SIGTERM
//   - version: Version reported by --version
//   - log: Logger for the outcome of the command
//
// Returns:
//   - error: The first error of the executed subcommand
func Execute(ctx context.Context, version string, log logger.Logger) error {
	root := NewRootCommand(version)
	if log == nil {
		log = logger.Discard
	}
	err := root.ExecuteContext(ctx)
	if err != nil {
		log.Printf("Error: %v", err)
	}
	return err
}

// NewRootCommand builds the bip70-chain-verifier command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	name := posix.ExecutableName("bip70-chain-verifier")
	rootCmd := &cobra.Command{
		Use:   name,
		Short: "BIP70 payment request certificate chain verifier",
		Example: fmt.Sprintf(`  %[1]s verify --trust root.pem chain.pem
  %[1]s fingerprint root.pem
  %[1]s sign --key leaf.key --chain chain.pem --message request.bin`, name),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !a.printMetrics {
				return nil
			}
			return metrics.WriteText(cmd.OutOrStdout(), nil)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file (.json, .yaml, .yml)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json (overrides config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log why chains and signatures are rejected")
	flags.BoolVar(&a.printMetrics, "metrics", false, "print collected metrics after the command")

	rootCmd.AddCommand(
		a.newVerifyCommand(),
		a.newFingerprintCommand(),
		a.newSignCommand(),
		a.newVerifySigCommand(),
	)
	return rootCmd
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	a.log = logger.Discard
	if a.verbose {
		l, err := cfg.Logger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		a.log = l
	}

	if cfg.Metrics.Enabled {
		metrics.Enable()
		a.recorder = metrics.NewRecorder()
	} else {
		metrics.Disable()
	}
	return nil
}

// trustStore builds the configured store and applies command-line anchors.
func (a *app) trustStore(roots, fingerprints []string, allowUntrusted bool) (*x509trust.Store, error) {
	store, err := a.cfg.TrustStore()
	if err != nil {
		return nil, err
	}
	if err := store.LoadFiles(roots...); err != nil {
		return nil, fmt.Errorf("--trust: %w", err)
	}
	items := make([]x509trust.Item, len(fingerprints))
	for i, fp := range fingerprints {
		items[i] = fp
	}
	if err := store.AddFingerprints(items...); err != nil {
		return nil, fmt.Errorf("--fingerprint: %w", err)
	}
	if allowUntrusted {
		store.SetAllowUntrusted(true)
	}
	metrics.SetTrustedFingerprints(store.Len())
	return store, nil
}

func (a *app) validator(store *x509trust.Store) *x509chain.Validator {
	opts := []x509chain.Option{x509chain.WithLogger(a.log)}
	if a.recorder != nil {
		opts = append(opts, x509chain.WithRecorder(a.recorder))
	}
	return x509chain.New(store, opts...)
}

func (a *app) paymentOptions() []payment.Option {
	opts := []payment.Option{payment.WithLogger(a.log)}
	if a.recorder != nil {
		opts = append(opts, payment.WithRecorder(a.recorder))
	}
	return opts
}

func (a *app) begin() {
	OperationPerformed = true
}

func (a *app) done(err error) error {
	OperationPerformedSuccessfully = err == nil
	return err
}

func writeLine(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
