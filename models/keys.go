// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// KDFParams are the public inputs a client needs to re-derive its master key.
// Only Salt varies between users; the cost fields echo the fixed profile so
// that a client can refuse to log in against an unexpected setting.
type KDFParams struct {
	Salt      []byte `json:"salt"`
	Algorithm string `json:"algorithm"`
	Time      uint32 `json:"time"`
	MemoryKiB uint32 `json:"memory_kib"`
	Threads   uint8  `json:"threads"`
}

// IdentityKeyPair is a user's long-lived X25519 key pair.
type IdentityKeyPair struct {
	PublicKey  [32]byte
	PrivateKey [32]byte
}

// WrappedPrivateKey is the identity private key encrypted under the master
// key with XChaCha20-Poly1305.
type WrappedPrivateKey struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
}

// IsZero reports whether the wrapped key carries no data.
func (w WrappedPrivateKey) IsZero() bool {
	return len(w.Ciphertext) == 0 && len(w.Nonce) == 0
}

// WrappedVaultKey is a vault key sealed to one member's public key. There is
// exactly one per (vault, member) pair and key version.
type WrappedVaultKey struct {
	VaultID    string `json:"vault_id"`
	UserID     int64  `json:"user_id"`
	Ciphertext []byte `json:"ciphertext"`
	KeyVersion int64  `json:"key_version"`
}
