package keychain

import (
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
)

// CreateVaultKey draws a fresh 32-byte vault key.
func CreateVaultKey() ([]byte, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("create vault key: %w", err)
	}
	return key, nil
}

// GrantAccess seals vaultKey to a member's public key. The vault owner gets
// a sealed copy through this same call.
func GrantAccess(vaultKey, memberPublicKey []byte) ([]byte, error) {
	if len(vaultKey) != crypto.KeySize {
		return nil, fmt.Errorf("%w: vault key must be %d bytes", crypto.ErrInvalidKey, crypto.KeySize)
	}

	wrapped, err := crypto.Seal(vaultKey, memberPublicKey)
	if err != nil {
		return nil, fmt.Errorf("grant access: %w", err)
	}
	return wrapped, nil
}

// UnwrapVaultKey opens a member's sealed copy of the vault key.
func UnwrapVaultKey(wrapped, memberPublicKey, memberPrivateKey []byte) ([]byte, error) {
	key, err := crypto.Unseal(wrapped, memberPublicKey, memberPrivateKey)
	if err != nil {
		return nil, crypto.ErrAuthenticationFailed
	}
	if len(key) != crypto.KeySize {
		crypto.Wipe(key)
		return nil, crypto.ErrAuthenticationFailed
	}
	return key, nil
}
