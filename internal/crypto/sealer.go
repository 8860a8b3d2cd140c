package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

// PublicKeySize and PrivateKeySize are the X25519 key lengths.
const (
	PublicKeySize  = 32
	PrivateKeySize = 32

	// SealOverhead is what [Seal] adds to the plaintext: the ephemeral
	// public key and the Poly1305 tag.
	SealOverhead = box.AnonymousOverhead
	// SealedKeySize is the length of a sealed 32-byte symmetric key.
	SealedKeySize = KeySize + SealOverhead
)

// KeyPair is an X25519 key pair.
type KeyPair struct {
	PublicKey  [PublicKeySize]byte
	PrivateKey [PrivateKeySize]byte
}

// GenerateKeyPair creates a fresh X25519 key pair.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate key pair: %w", err)
	}
	return KeyPair{PublicKey: *pub, PrivateKey: *priv}, nil
}

// Seal encrypts plaintext to recipientPub with an anonymous sealed box. The
// sender uses an ephemeral key pair, so the output reveals nothing about who
// produced it. Output length is len(plaintext)+[SealOverhead].
func Seal(plaintext, recipientPub []byte) ([]byte, error) {
	pub, err := toKey(recipientPub)
	if err != nil {
		return nil, err
	}
	out, err := box.SealAnonymous(nil, plaintext, pub, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	return out, nil
}

// Unseal opens a sealed box. A wrong key pair or any tampering yields
// [ErrAuthenticationFailed].
func Unseal(ciphertext, recipientPub, recipientPriv []byte) ([]byte, error) {
	pub, err := toKey(recipientPub)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	priv, err := toKey(recipientPriv)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	out, ok := box.OpenAnonymous(nil, ciphertext, pub, priv)
	if !ok {
		return nil, ErrAuthenticationFailed
	}
	return out, nil
}

func toKey(b []byte) (*[32]byte, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidKey, len(b))
	}
	var k [32]byte
	copy(k[:], b)
	return &k, nil
}
