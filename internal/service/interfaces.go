package service

import (
	"context"

	"github.com/MKhiriev/go-secret-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService registers users, authenticates them by auth hash and issues
// access tokens. It never receives a password or a key.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	// Params returns the KDF parameters for login. Unknown logins get a
	// deterministic fake salt so the endpoint does not reveal which logins
	// exist.
	Params(ctx context.Context, req models.ParamsRequest) (models.KDFParams, error)
	Login(ctx context.Context, req models.LoginRequest) (models.User, error)
	UpdateCredentials(ctx context.Context, userID int64, req models.ChangeCredentialsRequest) error
	FindMember(ctx context.Context, login string) (models.Member, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// VaultService enforces vault membership and ownership. Members read and
// write secrets; only the owner grants access and rotates keys.
type VaultService interface {
	CreateVault(ctx context.Context, userID int64, req models.CreateVaultRequest) (models.Vault, error)
	ListVaults(ctx context.Context, userID int64) ([]models.Vault, error)
	GetWrappedKey(ctx context.Context, userID int64, vaultID string) (models.WrappedVaultKey, error)
	ListMembers(ctx context.Context, userID int64, vaultID string) ([]models.Member, error)
	GrantAccess(ctx context.Context, userID int64, vaultID string, req models.GrantRequest) error
	Rotate(ctx context.Context, userID int64, vaultID string, req models.RotateRequest) (int64, error)

	PutSecret(ctx context.Context, userID int64, secret models.EncryptedSecret) (models.EncryptedSecret, error)
	GetSecret(ctx context.Context, userID int64, ref models.SecretRef) (models.EncryptedSecret, error)
	ListSecrets(ctx context.Context, userID int64, vaultID, environment string) ([]models.EncryptedSecret, error)
	DeleteSecret(ctx context.Context, userID int64, ref models.SecretRef) error
}

// ShareService stores and hands out ephemeral share payloads.
type ShareService interface {
	CreateShare(ctx context.Context, req models.CreateShareRequest) (models.CreateShareResponse, error)
	// ConsumeShare returns the payload and spends one view.
	ConsumeShare(ctx context.Context, shareID string) (models.ShareRecord, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
