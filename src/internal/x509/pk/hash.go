// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pk

import (
	"crypto"
	"errors"
	"fmt"
	"hash"

	// Registered for crypto.Hash.New.
	_ "crypto/md5"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"

	"golang.org/x/crypto/md4"

	x509alg "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/algorithm"
	x509keys "github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/x509/keys"
)

var (
	// ErrUnsupportedHash indicates a hash kind with no available implementation.
	ErrUnsupportedHash = errors.New("pk: unsupported hash")

	// ErrInvalidKey is returned when a key descriptor cannot be turned into
	// a usable key. It is the same value as x509keys.ErrInvalidKey.
	ErrInvalidKey = x509keys.ErrInvalidKey
)

// cryptoHashes maps hash kinds onto standard library hashes. MD2 and MD4 are
// absent because rsa.SignPKCS1v15 has no DigestInfo prefix for them.
var cryptoHashes = map[x509alg.HashKind]crypto.Hash{
	x509alg.HashMD5:    crypto.MD5,
	x509alg.HashSHA1:   crypto.SHA1,
	x509alg.HashSHA224: crypto.SHA224,
	x509alg.HashSHA256: crypto.SHA256,
	x509alg.HashSHA384: crypto.SHA384,
	x509alg.HashSHA512: crypto.SHA512,
}

func newHash(kind x509alg.HashKind) (hash.Hash, error) {
	switch kind {
	case x509alg.HashMD2:
		return newMD2(), nil
	case x509alg.HashMD4:
		return md4.New(), nil
	}
	h, ok := cryptoHashes[kind]
	if !ok || !h.Available() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedHash, kind)
	}
	return h.New(), nil
}

// Digest hashes msg with kind.
func Digest(kind x509alg.HashKind, msg []byte) ([]byte, error) {
	h, err := newHash(kind)
	if err != nil {
		return nil, err
	}
	h.Write(msg)
	return h.Sum(nil), nil
}
