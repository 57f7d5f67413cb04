// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	x509trust "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/trust"
	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/logger"
)

// Environment variables read by Load.
const (
	// EnvConfigFile names the configuration file when no path is given.
	EnvConfigFile = "BIP70_VERIFIER_CONFIG"
	// EnvAllowUntrusted overrides trust.allowUntrusted; any value accepted
	// by strconv.ParseBool.
	EnvAllowUntrusted = "BIP70_ALLOW_UNTRUSTED"
)

// ErrInvalidConfig indicates a configuration value outside its allowed set.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is the verifier configuration.
//
// It is loaded from a JSON or YAML file chosen by extension (.json, .yaml,
// .yml), with defaults for every missing value.
type Config struct {
	// Trust: Trust anchors and policy
	Trust struct {
		// Roots: Certificate files (PEM bundle, DER or PKCS#7) whose
		// certificates are trusted
		Roots []string `json:"roots,omitempty" yaml:"roots,omitempty"`
		// Fingerprints: Hex SHA-256 fingerprints of trusted certificates
		Fingerprints []string `json:"fingerprints,omitempty" yaml:"fingerprints,omitempty"`
		// AllowUntrusted: Accept chains without a trusted member
		// (can also be set via BIP70_ALLOW_UNTRUSTED)
		AllowUntrusted bool `json:"allowUntrusted" yaml:"allowUntrusted"`
	} `json:"trust" yaml:"trust"`

	// Log: Logger settings
	Log struct {
		// Format: "text" or "json"
		Format string `json:"format,omitempty" yaml:"format,omitempty"`
	} `json:"log" yaml:"log"`

	// Metrics: Prometheus instrumentation
	Metrics struct {
		// Enabled: Record verification and signing metrics
		Enabled bool `json:"enabled" yaml:"enabled"`
	} `json:"metrics" yaml:"metrics"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Log.Format = logger.FormatText
	cfg.Metrics.Enabled = true
	return cfg
}

// detectConfigFormat determines the configuration file format based on file extension.
// Extension matching is case-insensitive; anything that is not YAML is read as JSON.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Load loads the configuration from a JSON or YAML file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Read, parse or validation failure
//
// Configuration Priority:
//  1. Default values are set
//  2. BIP70_VERIFIER_CONFIG is used if configPath is empty
//  3. Config file values override defaults
//  4. BIP70_ALLOW_UNTRUSTED overrides trust.allowUntrusted
//
// Relative root paths are resolved against the directory of the file.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		format := detectConfigFormat(configPath)
		if err := unmarshalConfig(data, config, format); err != nil {
			return nil, err
		}

		dir := filepath.Dir(configPath)
		for i, root := range config.Trust.Roots {
			if !filepath.IsAbs(root) {
				config.Trust.Roots[i] = filepath.Join(dir, root)
			}
		}
	}

	if v, ok := os.LookupEnv(EnvAllowUntrusted); ok && v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvAllowUntrusted, v)
		}
		config.Trust.AllowUntrusted = allow
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that have a fixed set of choices.
// An empty log format is replaced by "text".
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "":
		c.Log.Format = logger.FormatText
	case logger.FormatText, logger.FormatJSON:
		c.Log.Format = strings.ToLower(c.Log.Format)
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// TrustStore builds a trust store from the configured roots and fingerprints.
//
// Returns:
//   - *x509trust.Store: Store holding every configured anchor
//   - error: Unreadable root file, undecodable certificate or malformed
//     fingerprint
func (c *Config) TrustStore() (*x509trust.Store, error) {
	store, err := x509trust.New(
		x509trust.WithFingerprints(toItems(c.Trust.Fingerprints)...),
		x509trust.WithAllowUntrusted(c.Trust.AllowUntrusted),
	)
	if err != nil {
		return nil, fmt.Errorf("trust.fingerprints: %w", err)
	}
	if err := store.LoadFiles(c.Trust.Roots...); err != nil {
		return nil, fmt.Errorf("trust.roots: %w", err)
	}
	return store, nil
}

// Logger creates the logger selected by log.format, writing to w
// (os.Stderr when nil).
func (c *Config) Logger(w io.Writer) (logger.Logger, error) {
	return logger.New(c.Log.Format, w)
}

func toItems(values []string) []x509trust.Item {
	items := make([]x509trust.Item, len(values))
	for i, v := range values {
		items[i] = v
	}
	return items
}
