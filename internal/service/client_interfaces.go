package service

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock

import (
	"context"
	"time"

	"github.com/MKhiriev/go-secret-keeper/models"
)

// ClientAuthService runs the password side of the key hierarchy on the
// client. Passwords and master keys never leave it; the server only sees the
// auth hash and the wrapped private key.
type ClientAuthService interface {
	// Register creates the identity, uploads its wrapped form and leaves the
	// session unlocked.
	Register(ctx context.Context, login, password string) (models.User, error)
	// Unlock fills the session cache. Any failure after the KDF parameters
	// are known is reported as [ErrUnlockFailed].
	Unlock(ctx context.Context, login, password string) error
	Lock()
	// ChangePassword re-wraps the private key under a new master key. Vault
	// keys are unaffected.
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
}

// ClientVaultService encrypts and decrypts vault contents for the unlocked
// user.
type ClientVaultService interface {
	CreateVault(ctx context.Context, name string) (models.Vault, error)
	ListVaults(ctx context.Context) ([]models.Vault, error)
	ListMembers(ctx context.Context, vaultID string) ([]models.Member, error)
	// Grant seals the vault key for login's public key.
	Grant(ctx context.Context, vaultID, login string) error
	// Revoke removes userID and rotates the vault key in the same request.
	// It returns the new key version.
	Revoke(ctx context.Context, vaultID string, userID int64) (int64, error)
	// RotateKey replaces the vault key without removing anyone.
	RotateKey(ctx context.Context, vaultID string) (int64, error)

	PutSecret(ctx context.Context, ref models.SecretRef, value []byte) error
	GetSecret(ctx context.Context, ref models.SecretRef) ([]byte, error)
	ListSecrets(ctx context.Context, vaultID, environment string) ([]models.SecretRef, error)
	DeleteSecret(ctx context.Context, ref models.SecretRef) error
}

// ClientShareService creates and opens ephemeral share links.
type ClientShareService interface {
	Share(ctx context.Context, content []byte, password string, ttl time.Duration, maxViews int) (models.ShareLink, error)
	// Resolve returns the shared content. [share.ErrPasswordRequired] is
	// passed through so the caller can prompt; every other failure to
	// decrypt or find the link is [ErrShareUnavailable].
	Resolve(ctx context.Context, rawURL, password string) ([]byte, error)
}
