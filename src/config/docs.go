// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the verifier configuration from JSON or YAML.
//
// Example YAML configuration:
//
//	trust:
//	  roots:
//	    - roots/payment-roots.pem
//	  fingerprints:
//	    - 0d2b4f...c9e1
//	  allowUntrusted: false
//	log:
//	  format: json
//	metrics:
//	  enabled: true
//
// The file path may also come from the BIP70_VERIFIER_CONFIG environment
// variable, and BIP70_ALLOW_UNTRUSTED overrides trust.allowUntrusted.
package config
