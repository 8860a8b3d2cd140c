package keychain

import (
	"encoding/binary"
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/models"
)

const secretAADLabel = "secret-keeper/secret/v1"

// secretAAD binds a ciphertext to its row. Each component is length-prefixed
// so that ("a","bc") and ("ab","c") never collide.
func secretAAD(ref models.SecretRef) []byte {
	parts := []string{secretAADLabel, ref.VaultID, ref.Environment, ref.Key}

	n := 0
	for _, p := range parts {
		n += 4 + len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = binary.BigEndian.AppendUint32(out, uint32(len(p)))
		out = append(out, p...)
	}
	return out
}

// EncryptValue encrypts one secret value under the vault key.
func EncryptValue(ref models.SecretRef, plaintext, vaultKey []byte) (models.EncryptedSecret, error) {
	sealed, err := crypto.Encrypt(plaintext, vaultKey, secretAAD(ref))
	if err != nil {
		return models.EncryptedSecret{}, fmt.Errorf("encrypt value %s: %w", ref, err)
	}
	return models.EncryptedSecret{
		SecretRef:  ref,
		Ciphertext: sealed.Ciphertext,
		Nonce:      sealed.Nonce,
	}, nil
}

// DecryptValue decrypts a secret. A ciphertext copied to a different vault,
// environment or key fails authentication.
func DecryptValue(secret models.EncryptedSecret, vaultKey []byte) ([]byte, error) {
	return crypto.Decrypt(secret.Ciphertext, secret.Nonce, vaultKey, secretAAD(secret.SecretRef))
}
