package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/internal/validators"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type vaultService struct {
	vaults    store.VaultRepository
	secrets   store.SecretRepository
	validator validators.Validator
	ids       *utils.UUIDGenerator

	logger *logger.Logger
}

func NewVaultService(vaults store.VaultRepository, secrets store.SecretRepository, validator validators.Validator, logger *logger.Logger) VaultService {
	return &vaultService{
		vaults:    vaults,
		secrets:   secrets,
		validator: validator,
		ids:       utils.NewUUIDGenerator(),
		logger:    logger,
	}
}

// CreateVault creates a vault owned by userID. req.WrappedKey is the new
// vault key sealed to the owner's public key.
func (s *vaultService) CreateVault(ctx context.Context, userID int64, req models.CreateVaultRequest) (models.Vault, error) {
	if err := s.validator.Validate(ctx, req); err != nil {
		return models.Vault{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	vault := models.Vault{
		VaultID: s.ids.Generate(),
		Name:    req.Name,
		OwnerID: userID,
	}

	created, err := s.vaults.CreateVault(ctx, vault, models.WrappedVaultKey{
		VaultID:    vault.VaultID,
		UserID:     userID,
		Ciphertext: req.WrappedKey,
	})
	if err != nil {
		return models.Vault{}, fmt.Errorf("error creating vault: %w", err)
	}

	logger.FromContext(ctx).Info().Str("vault_id", created.VaultID).Int64("owner_id", userID).Msg("vault created")
	return created, nil
}

func (s *vaultService) ListVaults(ctx context.Context, userID int64) ([]models.Vault, error) {
	return s.vaults.ListVaults(ctx, userID)
}

// GetWrappedKey returns the caller's own sealed copy of the vault key.
func (s *vaultService) GetWrappedKey(ctx context.Context, userID int64, vaultID string) (models.WrappedVaultKey, error) {
	key, err := s.vaults.GetWrappedKey(ctx, vaultID, userID)
	if err != nil {
		return models.WrappedVaultKey{}, s.membershipError(ctx, vaultID, err)
	}
	return key, nil
}

func (s *vaultService) ListMembers(ctx context.Context, userID int64, vaultID string) ([]models.Member, error) {
	if _, err := s.requireMember(ctx, userID, vaultID); err != nil {
		return nil, err
	}
	return s.vaults.ListMembers(ctx, vaultID)
}

// GrantAccess stores a wrapped key for a new member. Owner only.
func (s *vaultService) GrantAccess(ctx context.Context, userID int64, vaultID string, req models.GrantRequest) error {
	if err := s.validator.Validate(ctx, req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if _, err := s.requireOwner(ctx, userID, vaultID); err != nil {
		return err
	}

	err := s.vaults.AddMember(ctx, models.WrappedVaultKey{
		VaultID:    vaultID,
		UserID:     req.UserID,
		Ciphertext: req.WrappedKey,
		KeyVersion: req.KeyVersion,
	})
	if err != nil {
		return fmt.Errorf("error granting access: %w", err)
	}

	logger.FromContext(ctx).Info().Str("vault_id", vaultID).Int64("member_id", req.UserID).Msg("access granted")
	return nil
}

// Rotate installs a new vault key. Owner only; the owner can never be in
// the removed set.
func (s *vaultService) Rotate(ctx context.Context, userID int64, vaultID string, req models.RotateRequest) (int64, error) {
	if err := s.validator.Validate(ctx, req); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	vault, err := s.requireOwner(ctx, userID, vaultID)
	if err != nil {
		return 0, err
	}
	if slices.Contains(req.RemovedMembers, vault.OwnerID) {
		return 0, ErrOwnerCannotBeRemoved
	}

	for i := range req.Secrets {
		req.Secrets[i].VaultID = vaultID
	}

	version, err := s.vaults.Rotate(ctx, vaultID, req)
	if err != nil {
		return 0, fmt.Errorf("error rotating vault key: %w", err)
	}
	return version, nil
}

// PutSecret stores a secret written by any member.
func (s *vaultService) PutSecret(ctx context.Context, userID int64, secret models.EncryptedSecret) (models.EncryptedSecret, error) {
	if err := s.validator.Validate(ctx, secret); err != nil {
		return models.EncryptedSecret{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if _, err := s.requireMember(ctx, userID, secret.VaultID); err != nil {
		return models.EncryptedSecret{}, err
	}

	saved, err := s.secrets.PutSecret(ctx, secret)
	if err != nil {
		return models.EncryptedSecret{}, fmt.Errorf("error saving secret: %w", err)
	}
	return saved, nil
}

func (s *vaultService) GetSecret(ctx context.Context, userID int64, ref models.SecretRef) (models.EncryptedSecret, error) {
	if _, err := s.requireMember(ctx, userID, ref.VaultID); err != nil {
		return models.EncryptedSecret{}, err
	}
	return s.secrets.GetSecret(ctx, ref)
}

func (s *vaultService) ListSecrets(ctx context.Context, userID int64, vaultID, environment string) ([]models.EncryptedSecret, error) {
	if _, err := s.requireMember(ctx, userID, vaultID); err != nil {
		return nil, err
	}
	return s.secrets.ListSecrets(ctx, vaultID, environment)
}

func (s *vaultService) DeleteSecret(ctx context.Context, userID int64, ref models.SecretRef) error {
	if _, err := s.requireMember(ctx, userID, ref.VaultID); err != nil {
		return err
	}
	return s.secrets.DeleteSecret(ctx, ref)
}

// requireMember succeeds when userID holds a wrapped key for the vault.
func (s *vaultService) requireMember(ctx context.Context, userID int64, vaultID string) (models.WrappedVaultKey, error) {
	key, err := s.vaults.GetWrappedKey(ctx, vaultID, userID)
	if err != nil {
		return models.WrappedVaultKey{}, s.membershipError(ctx, vaultID, err)
	}
	return key, nil
}

func (s *vaultService) requireOwner(ctx context.Context, userID int64, vaultID string) (models.Vault, error) {
	vault, err := s.vaults.GetVault(ctx, vaultID)
	if err != nil {
		return models.Vault{}, err
	}
	if vault.OwnerID != userID {
		logger.FromContext(ctx).Warn().Str("vault_id", vaultID).Int64("user_id", userID).Msg("non-owner attempted owner operation")
		return models.Vault{}, ErrForbidden
	}
	return vault, nil
}

// membershipError turns ErrNotAMember into ErrVaultNotFound or
// ErrForbidden depending on whether the vault exists.
func (s *vaultService) membershipError(ctx context.Context, vaultID string, err error) error {
	if !errors.Is(err, store.ErrNotAMember) {
		return err
	}
	if _, getErr := s.vaults.GetVault(ctx, vaultID); getErr != nil {
		return getErr
	}
	return ErrForbidden
}
