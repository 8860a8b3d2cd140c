// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validUser() models.User {
	return models.User{
		Login:          "alice@example.com",
		AuthHash:       "hash",
		EncryptionSalt: make([]byte, crypto.SaltSize),
		PublicKey:      make([]byte, crypto.PublicKeySize),
		WrappedPrivateKey: models.WrappedPrivateKey{
			Ciphertext: make([]byte, crypto.PrivateKeySize+crypto.Overhead),
			Nonce:      make([]byte, crypto.NonceSize),
		},
	}
}

func validSecret() models.EncryptedSecret {
	return models.EncryptedSecret{
		SecretRef:  models.SecretRef{VaultID: "0190b7c4-7a1e-7c3e-9d2a-1b2c3d4e5f60", Environment: "prod", Key: "DB_PASSWORD"},
		Ciphertext: make([]byte, crypto.Overhead+8),
		Nonce:      make([]byte, crypto.NonceSize),
		KeyVersion: 1,
	}
}

func validRotation() models.RotateRequest {
	return models.RotateRequest{
		KeyVersion:     1,
		RemovedMembers: []int64{3},
		WrappedKeys: []models.WrappedVaultKey{
			{UserID: 1, Ciphertext: make([]byte, crypto.SealedKeySize)},
			{UserID: 2, Ciphertext: make([]byte, crypto.SealedKeySize)},
		},
		Secrets: []models.EncryptedSecret{validSecret()},
	}
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestValidate_Dispatch(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()
	user := validUser()

	valid := []any{
		user,
		&user,
		models.LoginRequest{Login: "alice", AuthHash: "h"},
		models.ParamsRequest{Login: "alice"},
		models.CreateVaultRequest{Name: "payments", WrappedKey: make([]byte, crypto.SealedKeySize)},
		models.GrantRequest{UserID: 2, WrappedKey: make([]byte, crypto.SealedKeySize), KeyVersion: 1},
		validRotation(),
		validSecret(),
		models.CreateShareRequest{Ciphertext: make([]byte, 32), Nonce: make([]byte, crypto.NonceSize), TTLSeconds: 60, MaxViews: 1},
		models.ChangeCredentialsRequest{
			CurrentAuthHash:   "old",
			AuthHash:          "new",
			EncryptionSalt:    user.EncryptionSalt,
			WrappedPrivateKey: user.WrappedPrivateKey,
		},
	}
	for _, obj := range valid {
		assert.NoError(t, v.Validate(ctx, obj), "%T", obj)
	}

	assert.ErrorIs(t, v.Validate(ctx, 42), ErrUnsupportedType)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func TestValidate_User(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(u *models.User)
		want   error
	}{
		{"empty login", func(u *models.User) { u.Login = "" }, ErrInvalidLogin},
		{"login with spaces", func(u *models.User) { u.Login = "al ice" }, ErrInvalidLogin},
		{"empty auth hash", func(u *models.User) { u.AuthHash = "" }, ErrEmptyAuthHash},
		{"short salt", func(u *models.User) { u.EncryptionSalt = []byte{1} }, ErrInvalidSalt},
		{"short public key", func(u *models.User) { u.PublicKey = make([]byte, 31) }, ErrInvalidPublicKey},
		{"bad wrapped key nonce", func(u *models.User) { u.WrappedPrivateKey.Nonce = make([]byte, 12) }, ErrInvalidWrappedPrivateKey},
		{"plaintext private key", func(u *models.User) { u.WrappedPrivateKey.Ciphertext = make([]byte, 32) }, ErrInvalidWrappedPrivateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(&u)
			assert.ErrorIs(t, v.Validate(ctx, u), tt.want)
		})
	}
}

func TestValidate_UserFieldScoping(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	u := models.User{Login: "alice"}
	require.NoError(t, v.Validate(ctx, u, FieldLogin))
	assert.ErrorIs(t, v.Validate(ctx, u, FieldLogin, FieldAuthHash), ErrEmptyAuthHash)
	assert.ErrorIs(t, v.Validate(ctx, u, "unknown"), ErrUnknownField)
}

// ---------------------------------------------------------------------------
// Vaults and secrets
// ---------------------------------------------------------------------------

func TestValidate_CreateVault(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	assert.ErrorIs(t, v.Validate(ctx, models.CreateVaultRequest{WrappedKey: make([]byte, crypto.SealedKeySize)}), ErrInvalidVaultName)
	assert.ErrorIs(t, v.Validate(ctx, models.CreateVaultRequest{Name: "x", WrappedKey: make([]byte, crypto.KeySize)}), ErrInvalidWrappedVaultKey)
}

func TestValidate_Grant(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()
	key := make([]byte, crypto.SealedKeySize)

	assert.ErrorIs(t, v.Validate(ctx, models.GrantRequest{WrappedKey: key, KeyVersion: 1}), ErrInvalidUserID)
	assert.ErrorIs(t, v.Validate(ctx, models.GrantRequest{UserID: 1, KeyVersion: 1}), ErrInvalidWrappedVaultKey)
	assert.ErrorIs(t, v.Validate(ctx, models.GrantRequest{UserID: 1, WrappedKey: key}), ErrInvalidKeyVersion)
}

func TestValidate_Rotate(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *models.RotateRequest)
		want   error
	}{
		{"zero version", func(r *models.RotateRequest) { r.KeyVersion = 0 }, ErrInvalidKeyVersion},
		{"no wrapped keys", func(r *models.RotateRequest) { r.WrappedKeys = nil }, ErrNoWrappedKeys},
		{"duplicate member", func(r *models.RotateRequest) { r.WrappedKeys[1].UserID = 1 }, ErrDuplicateMember},
		{"removed member rewrapped", func(r *models.RotateRequest) { r.RemovedMembers = []int64{2} }, ErrRemovedMemberRewrapped},
		{"bad wrapped key", func(r *models.RotateRequest) { r.WrappedKeys[0].Ciphertext = nil }, ErrInvalidWrappedVaultKey},
		{"bad secret nonce", func(r *models.RotateRequest) { r.Secrets[0].Nonce = nil }, ErrInvalidNonce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRotation()
			tt.mutate(&r)
			assert.ErrorIs(t, v.Validate(ctx, r), tt.want)
		})
	}
}

func TestValidate_Secret(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(s *models.EncryptedSecret)
		want   error
	}{
		{"bad vault id", func(s *models.EncryptedSecret) { s.VaultID = "../etc" }, ErrInvalidVaultID},
		{"empty environment", func(s *models.EncryptedSecret) { s.Environment = "" }, ErrInvalidEnvironment},
		{"slash in key", func(s *models.EncryptedSecret) { s.Key = "a/b" }, ErrInvalidSecretKey},
		{"short nonce", func(s *models.EncryptedSecret) { s.Nonce = make([]byte, 12) }, ErrInvalidNonce},
		{"truncated ciphertext", func(s *models.EncryptedSecret) { s.Ciphertext = make([]byte, 4) }, ErrInvalidCiphertext},
		{"zero key version", func(s *models.EncryptedSecret) { s.KeyVersion = 0 }, ErrInvalidKeyVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSecret()
			tt.mutate(&s)
			assert.ErrorIs(t, v.Validate(ctx, &s), tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// Shares
// ---------------------------------------------------------------------------

func TestValidate_CreateShare(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()
	base := models.CreateShareRequest{Ciphertext: make([]byte, 32), Nonce: make([]byte, crypto.NonceSize), TTLSeconds: 60, MaxViews: 1}

	r := base
	r.TTLSeconds = 0
	assert.ErrorIs(t, v.Validate(ctx, r), ErrInvalidTTL)

	r = base
	r.MaxViews = 0
	assert.ErrorIs(t, v.Validate(ctx, r), ErrInvalidMaxViews)

	r = base
	r.Ciphertext = nil
	assert.ErrorIs(t, v.Validate(ctx, r), ErrInvalidCiphertext)
}
