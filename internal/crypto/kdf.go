// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize is the length of a KDF salt in bytes.
	SaltSize = 16
	// KeySize is the length of every symmetric key in the hierarchy.
	KeySize = 32

	// AlgorithmArgon2id names the only supported password hash.
	AlgorithmArgon2id = "argon2id"
)

// KDFProfile describes an Argon2id cost setting.
type KDFProfile struct {
	Algorithm string
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// InteractiveProfile is the Argon2id interactive cost profile: 2 passes over
// 64 MiB on a single lane, producing a 32-byte key. It is identical on every
// client so that the same password and salt always yield the same key.
var InteractiveProfile = KDFProfile{
	Algorithm: AlgorithmArgon2id,
	Time:      2,
	MemoryKiB: 64 * 1024,
	Threads:   1,
	KeyLen:    KeySize,
}

func (p KDFProfile) validate() error {
	switch {
	case p.Algorithm != AlgorithmArgon2id:
		return fmt.Errorf("%w: unsupported algorithm %q", ErrKDF, p.Algorithm)
	case p.Time == 0:
		return fmt.Errorf("%w: time cost must be positive", ErrKDF)
	case p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB == 0:
		return fmt.Errorf("%w: memory cost too small", ErrKDF)
	case p.Threads == 0:
		return fmt.Errorf("%w: parallelism must be positive", ErrKDF)
	case p.KeyLen != KeySize:
		return fmt.Errorf("%w: key length must be %d", ErrKDF, KeySize)
	}
	return nil
}

// KDF turns a password and a salt into a symmetric master key. The zero
// value is not usable: construct it with [NewKDF] or [NewKDFWithProfile].
type KDF struct {
	profile KDFProfile
	ready   bool
}

// NewKDF returns a KDF bound to [InteractiveProfile].
func NewKDF() *KDF {
	return &KDF{profile: InteractiveProfile, ready: true}
}

// NewKDFWithProfile returns a KDF using a caller-chosen profile. Keys derived
// with a non-default profile are not interchangeable with keys derived by
// [NewKDF], so this constructor exists for tests and explicit migrations only.
func NewKDFWithProfile(p KDFProfile) (*KDF, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &KDF{profile: p, ready: true}, nil
}

// Profile returns the cost profile in use.
func (k *KDF) Profile() KDFProfile {
	return k.profile
}

// GenerateSalt reads SaltSize random bytes from the OS CSPRNG.
func (k *KDF) GenerateSalt() ([]byte, error) {
	return RandomBytes(SaltSize)
}

// Derive implements [Deriver]. The result depends only on password and salt.
func (k *KDF) Derive(password string, salt []byte) ([]byte, error) {
	if k == nil || !k.ready {
		return nil, fmt.Errorf("%w: engine not initialised", ErrKDF)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrKDF, SaltSize, len(salt))
	}

	return argon2.IDKey(
		[]byte(password),
		salt,
		k.profile.Time,
		k.profile.MemoryKiB,
		k.profile.Threads,
		k.profile.KeyLen,
	), nil
}

// RandomBytes returns n bytes from the OS CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// GenerateKey returns a fresh random symmetric key.
func GenerateKey() ([]byte, error) {
	return RandomBytes(KeySize)
}
