// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/certs"
	x509keys "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/keys"
)

// readChain reads PEM bundles, DER or PKCS#7 files and concatenates their
// certificates in argument order.
func readChain(ctx context.Context, paths []string) ([]*x509certs.Certificate, error) {
	codec := x509certs.New()
	var chain []*x509certs.Certificate
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := gc.ReadFile(path)
		if err != nil {
			return nil, err
		}
		certs, err := codec.DecodeBundle(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		chain = append(chain, certs...)
	}
	return chain, nil
}

func rawChain(chain []*x509certs.Certificate) [][]byte {
	raw := make([][]byte, len(chain))
	for i, cert := range chain {
		raw[i] = cert.Raw
	}
	return raw
}

// readKey reads a signing key. PEM files are self-describing keys; anything
// else is raw key material interpreted against the chain's leaf.
func readKey(path, password string) (x509keys.PrivateKeyInput, error) {
	data, err := gc.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if x509certs.New().IsPEM(data) {
		key := x509keys.EncodedKey{PEM: string(data)}
		if password != "" {
			key.Password = []byte(password)
		}
		return key, nil
	}
	return x509keys.RawKey(data), nil
}

func decodeHex(flag, value string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return b, nil
}
