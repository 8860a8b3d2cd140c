// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// NonceSize is the XChaCha20-Poly1305 nonce length.
	NonceSize = chacha20poly1305.NonceSizeX
	// Overhead is the length of the Poly1305 tag appended to every ciphertext.
	Overhead = chacha20poly1305.Overhead
)

// Sealed is the output of [Encrypt]. Ciphertext carries the 16-byte
// Poly1305 tag at its end.
type Sealed struct {
	Ciphertext []byte
	Nonce      []byte
}

// Encrypt seals plaintext under key with XChaCha20-Poly1305 and a fresh
// random 24-byte nonce. aad may be nil.
func Encrypt(plaintext, key, aad []byte) (Sealed, error) {
	if len(key) != KeySize {
		return Sealed{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Sealed{}, fmt.Errorf("create cipher: %w", err)
	}

	nonce, err := RandomBytes(NonceSize)
	if err != nil {
		return Sealed{}, fmt.Errorf("generate nonce: %w", err)
	}

	return Sealed{
		Ciphertext: aead.Seal(nil, nonce, plaintext, aad),
		Nonce:      nonce,
	}, nil
}

// Decrypt opens a ciphertext produced by [Encrypt]. Every failure, including
// a malformed key or nonce, is reported as [ErrAuthenticationFailed].
func Decrypt(ciphertext, nonce, key, aad []byte) ([]byte, error) {
	if len(key) != KeySize || len(nonce) != NonceSize {
		return nil, ErrAuthenticationFailed
	}
	if len(ciphertext) < chacha20poly1305.Overhead {
		return nil, ErrAuthenticationFailed
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
