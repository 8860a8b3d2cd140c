package models

import "time"

// User is a registered account. The server never sees the password or the
// master key: it stores the auth hash verifier, the KDF salt, the public key
// and the password-wrapped private key.
type User struct {
	// UserID is the internal identifier, assigned by the store.
	UserID int64 `json:"user_id,omitempty"`

	// Login is the unique account name.
	Login string `json:"login"`

	// AuthHash is the login verifier derived from the master key on the
	// client. On the server it is replaced by a keyed hash before storage.
	AuthHash string `json:"auth_hash,omitempty"`

	// EncryptionSalt is the Argon2id salt for the master key. Not secret.
	EncryptionSalt []byte `json:"encryption_salt,omitempty"`

	// PublicKey is the X25519 identity public key, stored in clear.
	PublicKey []byte `json:"public_key,omitempty"`

	// WrappedPrivateKey is the identity private key sealed under the master key.
	WrappedPrivateKey WrappedPrivateKey `json:"wrapped_private_key"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// TableName returns the name of the database table backing [User].
func (u User) TableName() string {
	return "users"
}

// Member is the public view of a vault member.
type Member struct {
	UserID    int64  `json:"user_id"`
	Login     string `json:"login"`
	PublicKey []byte `json:"public_key"`
}
