package models

import "time"

// Vault is a named container of secrets shared between members.
type Vault struct {
	VaultID    string    `json:"vault_id"`
	Name       string    `json:"name"`
	OwnerID    int64     `json:"owner_id"`
	KeyVersion int64     `json:"key_version"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// CreateVaultRequest creates a vault and the owner's wrapped key in one step.
type CreateVaultRequest struct {
	Name       string `json:"name"`
	WrappedKey []byte `json:"wrapped_key"`
}

// GrantRequest adds a member with a vault key sealed to their public key.
type GrantRequest struct {
	UserID     int64  `json:"user_id"`
	WrappedKey []byte `json:"wrapped_key"`
	KeyVersion int64  `json:"key_version"`
}

// RotateRequest replaces the vault key. It removes members, installs a fresh
// wrapped key for every remaining member and re-encrypted copies of every
// secret. KeyVersion is the version the client rotated from; the server
// rejects the request if it is stale.
type RotateRequest struct {
	KeyVersion     int64             `json:"key_version"`
	RemovedMembers []int64           `json:"removed_members"`
	WrappedKeys    []WrappedVaultKey `json:"wrapped_keys"`
	Secrets        []EncryptedSecret `json:"secrets"`
}

// RotateResponse reports the vault's key version after a rotation.
type RotateResponse struct {
	KeyVersion int64 `json:"key_version"`
}
