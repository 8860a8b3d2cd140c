// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keychain

import (
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// GenerateIdentity creates a user's X25519 identity key pair. Called once at
// registration.
func GenerateIdentity() (models.IdentityKeyPair, error) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return models.IdentityKeyPair{}, fmt.Errorf("generate identity: %w", err)
	}
	return models.IdentityKeyPair{PublicKey: kp.PublicKey, PrivateKey: kp.PrivateKey}, nil
}

// ProtectPrivateKey encrypts the identity private key under the master key.
// A new nonce is drawn on every call, so re-protecting after a password
// change never reuses a (key, nonce) pair.
func ProtectPrivateKey(privateKey, masterKey []byte) (models.WrappedPrivateKey, error) {
	if len(privateKey) != crypto.PrivateKeySize {
		return models.WrappedPrivateKey{}, fmt.Errorf("%w: private key must be %d bytes", crypto.ErrInvalidKey, crypto.PrivateKeySize)
	}

	sealed, err := crypto.Encrypt(privateKey, masterKey, nil)
	if err != nil {
		return models.WrappedPrivateKey{}, fmt.Errorf("protect private key: %w", err)
	}
	return models.WrappedPrivateKey{Ciphertext: sealed.Ciphertext, Nonce: sealed.Nonce}, nil
}

// Unlock decrypts the wrapped private key with the master key.
func Unlock(wrapped models.WrappedPrivateKey, masterKey []byte) ([]byte, error) {
	privateKey, err := crypto.Decrypt(wrapped.Ciphertext, wrapped.Nonce, masterKey, nil)
	if err != nil {
		return nil, crypto.ErrAuthenticationFailed
	}
	if len(privateKey) != crypto.PrivateKeySize {
		crypto.Wipe(privateKey)
		return nil, crypto.ErrAuthenticationFailed
	}
	return privateKey, nil
}
