package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-secret-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	// UpdateCredentials replaces the auth hash, salt and wrapped private key
	// after a password change. The public key never changes.
	UpdateCredentials(ctx context.Context, user models.User) error
}

// VaultRepository persists vaults, memberships and wrapped vault keys.
type VaultRepository interface {
	CreateVault(ctx context.Context, vault models.Vault, ownerKey models.WrappedVaultKey) (models.Vault, error)
	GetVault(ctx context.Context, vaultID string) (models.Vault, error)
	ListVaults(ctx context.Context, userID int64) ([]models.Vault, error)
	GetWrappedKey(ctx context.Context, vaultID string, userID int64) (models.WrappedVaultKey, error)
	AddMember(ctx context.Context, key models.WrappedVaultKey) error
	ListMembers(ctx context.Context, vaultID string) ([]models.Member, error)
	// Rotate atomically removes members, installs new wrapped keys and
	// re-encrypted secrets, and bumps the key version.
	Rotate(ctx context.Context, vaultID string, req models.RotateRequest) (int64, error)
}

// SecretRepository persists encrypted secrets.
type SecretRepository interface {
	PutSecret(ctx context.Context, secret models.EncryptedSecret) (models.EncryptedSecret, error)
	GetSecret(ctx context.Context, ref models.SecretRef) (models.EncryptedSecret, error)
	ListSecrets(ctx context.Context, vaultID, environment string) ([]models.EncryptedSecret, error)
	DeleteSecret(ctx context.Context, ref models.SecretRef) error
}

// ShareRepository persists ephemeral share payloads.
type ShareRepository interface {
	CreateShare(ctx context.Context, share models.ShareRecord) error
	// ConsumeShare returns the payload and spends one view. Missing, expired
	// and exhausted shares all yield ErrShareNotFound.
	ConsumeShare(ctx context.Context, shareID string, now time.Time) (models.ShareRecord, error)
	PurgeShares(ctx context.Context, now time.Time) (int64, error)
}
