package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const authHashInfo = "secret-keeper/auth/v1"

// DeriveAuthHash derives the login verifier from the master key. The value is
// sent to the server on login; HKDF domain-separates it from the master key
// so the server learns nothing that unwraps the private key.
func DeriveAuthHash(masterKey []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(masterKey))
	}

	out := make([]byte, KeySize)
	r := hkdf.New(sha256.New, masterKey, nil, []byte(authHashInfo))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("derive auth hash: %w", err)
	}
	return out, nil
}
