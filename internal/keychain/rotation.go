package keychain

import (
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// Rotation is the outcome of [RotateVaultKey]: the new plaintext key, a
// sealed copy for every remaining member and every secret re-encrypted
// under the new key. All wrapped keys and secrets carry KeyVersion.
type Rotation struct {
	Key         []byte
	KeyVersion  int64
	WrappedKeys []models.WrappedVaultKey
	Secrets     []models.EncryptedSecret
}

// RotateVaultKey replaces oldKey with a fresh vault key. Secrets are
// decrypted with oldKey and re-encrypted with the new key; members receive
// sealed copies of the new key. Removed members must already be excluded
// from members. On error the new key is wiped and nothing is returned.
func RotateVaultKey(vaultID string, oldKey []byte, oldVersion int64, secrets []models.EncryptedSecret, members []models.Member) (Rotation, error) {
	newKey, err := CreateVaultKey()
	if err != nil {
		return Rotation{}, err
	}

	r := Rotation{
		Key:         newKey,
		KeyVersion:  oldVersion + 1,
		WrappedKeys: make([]models.WrappedVaultKey, 0, len(members)),
		Secrets:     make([]models.EncryptedSecret, 0, len(secrets)),
	}

	fail := func(err error) (Rotation, error) {
		crypto.Wipe(newKey)
		return Rotation{}, err
	}

	for _, s := range secrets {
		if s.VaultID != vaultID {
			return fail(fmt.Errorf("rotate: secret %s does not belong to vault %s", s.SecretRef, vaultID))
		}
		plaintext, err := DecryptValue(s, oldKey)
		if err != nil {
			return fail(fmt.Errorf("rotate: decrypt %s: %w", s.SecretRef, err))
		}
		reenc, err := EncryptValue(s.SecretRef, plaintext, newKey)
		crypto.Wipe(plaintext)
		if err != nil {
			return fail(err)
		}
		reenc.KeyVersion = r.KeyVersion
		r.Secrets = append(r.Secrets, reenc)
	}

	for _, m := range members {
		wrapped, err := GrantAccess(newKey, m.PublicKey)
		if err != nil {
			return fail(fmt.Errorf("rotate: wrap for user %d: %w", m.UserID, err))
		}
		r.WrappedKeys = append(r.WrappedKeys, models.WrappedVaultKey{
			VaultID:    vaultID,
			UserID:     m.UserID,
			Ciphertext: wrapped,
			KeyVersion: r.KeyVersion,
		})
	}

	return r, nil
}
