package models

import (
	"strings"
	"time"
)

// SecretRef identifies a secret inside a vault.
type SecretRef struct {
	VaultID     string `json:"vault_id"`
	Environment string `json:"environment"`
	Key         string `json:"key"`
}

// String renders the reference as vault/environment/key.
func (r SecretRef) String() string {
	return strings.Join([]string{r.VaultID, r.Environment, r.Key}, "/")
}

// EncryptedSecret is a secret value encrypted under a vault key. The
// ciphertext is bound to its reference, so it cannot be moved to another row.
type EncryptedSecret struct {
	SecretRef
	Ciphertext []byte    `json:"ciphertext"`
	Nonce      []byte    `json:"nonce"`
	KeyVersion int64     `json:"key_version"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

// Ref returns the secret's reference.
func (s EncryptedSecret) Ref() SecretRef {
	return s.SecretRef
}
