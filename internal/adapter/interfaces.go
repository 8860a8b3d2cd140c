// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client's transport to the secret-keeper
// server.
//
// The primary abstraction is [ServerAdapter], which decouples the client
// services from the wire protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Everything the adapter sends is already encrypted or public: wrapped keys,
// sealed vault keys, secret ciphertexts and share payloads. Share fragments
// never pass through it.
//
// Non-2xx responses are mapped by mapHTTPError to the sentinel values in
// errors.go so that callers can use [errors.Is] (e.g. [ErrConflict] for 409,
// [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-secret-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the
// secret-keeper server.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the stored bearer token, or "" if none is set.
	Token() string

	// Register creates the account. On success the returned bearer token is
	// stored via SetToken.
	Register(ctx context.Context, user models.User) (models.User, error)

	// Params fetches the KDF salt and cost parameters for login. Unknown
	// logins receive stable fake parameters, so success says nothing about
	// whether the account exists.
	Params(ctx context.Context, login string) (models.KDFParams, error)

	// Login authenticates with the derived auth hash and returns the stored
	// user record including the wrapped private key. The bearer token is
	// stored via SetToken.
	Login(ctx context.Context, req models.LoginRequest) (models.User, error)

	// UpdateCredentials replaces the auth hash, salt and wrapped private key
	// after a password change.
	UpdateCredentials(ctx context.Context, req models.ChangeCredentialsRequest) error

	// FindMember resolves a login to the user's id and public key.
	FindMember(ctx context.Context, login string) (models.Member, error)

	CreateVault(ctx context.Context, req models.CreateVaultRequest) (models.Vault, error)
	ListVaults(ctx context.Context) ([]models.Vault, error)

	// GetWrappedKey returns the caller's sealed copy of the vault key.
	GetWrappedKey(ctx context.Context, vaultID string) (models.WrappedVaultKey, error)
	ListMembers(ctx context.Context, vaultID string) ([]models.Member, error)
	GrantAccess(ctx context.Context, vaultID string, req models.GrantRequest) error

	// Rotate submits a complete key rotation and returns the new key version.
	// A concurrent rotation surfaces as [ErrConflict].
	Rotate(ctx context.Context, vaultID string, req models.RotateRequest) (int64, error)

	PutSecret(ctx context.Context, secret models.EncryptedSecret) (models.EncryptedSecret, error)
	GetSecret(ctx context.Context, ref models.SecretRef) (models.EncryptedSecret, error)

	// ListSecrets returns the vault's secrets, filtered by environment when
	// it is non-empty.
	ListSecrets(ctx context.Context, vaultID, environment string) ([]models.EncryptedSecret, error)
	DeleteSecret(ctx context.Context, ref models.SecretRef) error

	CreateShare(ctx context.Context, req models.CreateShareRequest) (models.CreateShareResponse, error)

	// OpenShare consumes one view of a share record. No token is required.
	OpenShare(ctx context.Context, shareID string) (models.ShareRecord, error)
}
