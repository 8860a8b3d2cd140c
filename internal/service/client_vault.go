package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/MKhiriev/go-secret-keeper/internal/adapter"
	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/internal/keychain"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/session"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type clientVaultService struct {
	server  adapter.ServerAdapter
	session *session.Cache

	logger *logger.Logger
}

func NewClientVaultService(server adapter.ServerAdapter, cache *session.Cache, logger *logger.Logger) ClientVaultService {
	return &clientVaultService{server: server, session: cache, logger: logger}
}

func (s *clientVaultService) CreateVault(ctx context.Context, name string) (models.Vault, error) {
	account, err := s.session.Account()
	if err != nil {
		return models.Vault{}, err
	}

	vaultKey, err := keychain.CreateVaultKey()
	if err != nil {
		return models.Vault{}, err
	}
	defer crypto.Wipe(vaultKey)

	wrapped, err := keychain.GrantAccess(vaultKey, account.PublicKey)
	if err != nil {
		return models.Vault{}, err
	}

	vault, err := s.server.CreateVault(ctx, models.CreateVaultRequest{Name: name, WrappedKey: wrapped})
	if err != nil {
		return models.Vault{}, fmt.Errorf("create vault: %w", err)
	}

	if err = s.session.SetVaultKey(vaultKeyID(vault.VaultID, vault.KeyVersion), vaultKey); err != nil {
		return models.Vault{}, err
	}
	return vault, nil
}

func (s *clientVaultService) ListVaults(ctx context.Context) ([]models.Vault, error) {
	if _, err := s.session.Account(); err != nil {
		return nil, err
	}
	return s.server.ListVaults(ctx)
}

func (s *clientVaultService) ListMembers(ctx context.Context, vaultID string) ([]models.Member, error) {
	if _, err := s.session.Account(); err != nil {
		return nil, err
	}
	return s.server.ListMembers(ctx, vaultID)
}

func (s *clientVaultService) Grant(ctx context.Context, vaultID, login string) error {
	member, err := s.server.FindMember(ctx, login)
	if err != nil {
		if errors.Is(err, adapter.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotRegistered, login)
		}
		return fmt.Errorf("find member: %w", err)
	}

	vaultKey, version, err := s.currentVaultKey(ctx, vaultID)
	if err != nil {
		return err
	}
	defer crypto.Wipe(vaultKey)

	wrapped, err := keychain.GrantAccess(vaultKey, member.PublicKey)
	if err != nil {
		return err
	}

	err = s.server.GrantAccess(ctx, vaultID, models.GrantRequest{
		UserID:     member.UserID,
		WrappedKey: wrapped,
		KeyVersion: version,
	})
	if err != nil {
		return fmt.Errorf("grant access: %w", err)
	}

	s.logger.Info().Str("vault_id", vaultID).Int64("member_id", member.UserID).Msg("access granted")
	return nil
}

func (s *clientVaultService) Revoke(ctx context.Context, vaultID string, userID int64) (int64, error) {
	return s.rotate(ctx, vaultID, userID)
}

func (s *clientVaultService) RotateKey(ctx context.Context, vaultID string) (int64, error) {
	return s.rotate(ctx, vaultID, 0)
}

// rotate re-encrypts every secret under a fresh key and re-seals it for all
// members except removed (0 removes nobody). The server accepts the result
// only if the vault is still at the version the key was read at.
func (s *clientVaultService) rotate(ctx context.Context, vaultID string, removed int64) (int64, error) {
	vault, err := s.findVault(ctx, vaultID)
	if err != nil {
		return 0, err
	}
	if removed != 0 && removed == vault.OwnerID {
		return 0, ErrRevokeOwner
	}

	members, err := s.server.ListMembers(ctx, vaultID)
	if err != nil {
		return 0, fmt.Errorf("list members: %w", err)
	}
	var removedMembers []int64
	if removed != 0 {
		idx := slices.IndexFunc(members, func(m models.Member) bool { return m.UserID == removed })
		if idx < 0 {
			return 0, fmt.Errorf("%w: user %d", ErrNotVaultMember, removed)
		}
		members = slices.Delete(members, idx, idx+1)
		removedMembers = []int64{removed}
	}

	oldKey, oldVersion, err := s.currentVaultKey(ctx, vaultID)
	if err != nil {
		return 0, err
	}
	defer crypto.Wipe(oldKey)

	secrets, err := s.server.ListSecrets(ctx, vaultID, "")
	if err != nil {
		return 0, fmt.Errorf("list secrets: %w", err)
	}

	rotation, err := keychain.RotateVaultKey(vaultID, oldKey, oldVersion, secrets, members)
	if err != nil {
		return 0, err
	}
	defer crypto.Wipe(rotation.Key)

	version, err := s.server.Rotate(ctx, vaultID, models.RotateRequest{
		KeyVersion:     oldVersion,
		RemovedMembers: removedMembers,
		WrappedKeys:    rotation.WrappedKeys,
		Secrets:        rotation.Secrets,
	})
	if err != nil {
		return 0, fmt.Errorf("rotate vault key: %w", err)
	}

	s.session.DropVaultKey(vaultKeyID(vaultID, oldVersion))
	if err = s.session.SetVaultKey(vaultKeyID(vaultID, version), rotation.Key); err != nil {
		return 0, err
	}

	s.logger.Info().
		Str("vault_id", vaultID).
		Int64("key_version", version).
		Int("secrets", len(rotation.Secrets)).
		Msg("vault key rotated")
	return version, nil
}

func (s *clientVaultService) PutSecret(ctx context.Context, ref models.SecretRef, value []byte) error {
	vaultKey, version, err := s.currentVaultKey(ctx, ref.VaultID)
	if err != nil {
		return err
	}
	defer crypto.Wipe(vaultKey)

	secret, err := keychain.EncryptValue(ref, value, vaultKey)
	if err != nil {
		return err
	}
	secret.KeyVersion = version

	if _, err = s.server.PutSecret(ctx, secret); err != nil {
		return fmt.Errorf("put secret: %w", err)
	}
	return nil
}

func (s *clientVaultService) GetSecret(ctx context.Context, ref models.SecretRef) ([]byte, error) {
	if _, err := s.session.Account(); err != nil {
		return nil, err
	}

	secret, err := s.server.GetSecret(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get secret: %w", err)
	}

	vaultKey, err := s.vaultKey(ctx, ref.VaultID, secret.KeyVersion)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(vaultKey)

	return keychain.DecryptValue(secret, vaultKey)
}

func (s *clientVaultService) ListSecrets(ctx context.Context, vaultID, environment string) ([]models.SecretRef, error) {
	if _, err := s.session.Account(); err != nil {
		return nil, err
	}

	secrets, err := s.server.ListSecrets(ctx, vaultID, environment)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}

	refs := make([]models.SecretRef, 0, len(secrets))
	for _, secret := range secrets {
		refs = append(refs, secret.SecretRef)
	}
	return refs, nil
}

func (s *clientVaultService) DeleteSecret(ctx context.Context, ref models.SecretRef) error {
	if _, err := s.session.Account(); err != nil {
		return err
	}
	if err := s.server.DeleteSecret(ctx, ref); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}

// currentVaultKey returns the key at the vault's current version.
func (s *clientVaultService) currentVaultKey(ctx context.Context, vaultID string) ([]byte, int64, error) {
	if _, err := s.session.Account(); err != nil {
		return nil, 0, err
	}

	wrapped, err := s.fetchWrappedKey(ctx, vaultID)
	if err != nil {
		return nil, 0, err
	}
	if key, ok := s.session.VaultKey(vaultKeyID(vaultID, wrapped.KeyVersion)); ok {
		return key, wrapped.KeyVersion, nil
	}

	key, err := s.unwrapAndCache(wrapped)
	if err != nil {
		return nil, 0, err
	}
	return key, wrapped.KeyVersion, nil
}

// vaultKey returns the key at version, unwrapping the member's copy on a
// cache miss.
func (s *clientVaultService) vaultKey(ctx context.Context, vaultID string, version int64) ([]byte, error) {
	if key, ok := s.session.VaultKey(vaultKeyID(vaultID, version)); ok {
		return key, nil
	}

	wrapped, err := s.fetchWrappedKey(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if wrapped.KeyVersion != version {
		return nil, fmt.Errorf("%w: secret at key version %d, vault at %d", adapter.ErrConflict, version, wrapped.KeyVersion)
	}
	return s.unwrapAndCache(wrapped)
}

func (s *clientVaultService) fetchWrappedKey(ctx context.Context, vaultID string) (models.WrappedVaultKey, error) {
	wrapped, err := s.server.GetWrappedKey(ctx, vaultID)
	if err != nil {
		if errors.Is(err, adapter.ErrNotFound) || errors.Is(err, adapter.ErrForbidden) {
			return models.WrappedVaultKey{}, fmt.Errorf("%w: %s", ErrVaultUnknown, vaultID)
		}
		return models.WrappedVaultKey{}, fmt.Errorf("get wrapped key: %w", err)
	}
	wrapped.VaultID = vaultID
	return wrapped, nil
}

func (s *clientVaultService) unwrapAndCache(wrapped models.WrappedVaultKey) ([]byte, error) {
	account, err := s.session.Account()
	if err != nil {
		return nil, err
	}
	privateKey, err := s.session.PrivateKey()
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(privateKey)

	key, err := keychain.UnwrapVaultKey(wrapped.Ciphertext, account.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("unwrap vault key: %w", err)
	}
	if err = s.session.SetVaultKey(vaultKeyID(wrapped.VaultID, wrapped.KeyVersion), key); err != nil {
		crypto.Wipe(key)
		return nil, err
	}
	return key, nil
}

func (s *clientVaultService) findVault(ctx context.Context, vaultID string) (models.Vault, error) {
	if _, err := s.session.Account(); err != nil {
		return models.Vault{}, err
	}

	vaults, err := s.server.ListVaults(ctx)
	if err != nil {
		return models.Vault{}, fmt.Errorf("list vaults: %w", err)
	}
	idx := slices.IndexFunc(vaults, func(v models.Vault) bool { return v.VaultID == vaultID })
	if idx < 0 {
		return models.Vault{}, fmt.Errorf("%w: %s", ErrVaultUnknown, vaultID)
	}
	return vaults[idx], nil
}

// vaultKeyID names a cached key by vault and version, so a rotation by
// another member never leaves a stale key in use.
func vaultKeyID(vaultID string, version int64) string {
	return vaultID + "@" + strconv.FormatInt(version, 10)
}
