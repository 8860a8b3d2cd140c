package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// vaultRepository is the SQL implementation of [VaultRepository].
type vaultRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewVaultRepository constructs a [VaultRepository] over db.
func NewVaultRepository(db *DB, logger *logger.Logger) VaultRepository {
	logger.Debug().Msg("creating vault repository")
	return &vaultRepository{db: db, logger: logger}
}

// CreateVault inserts the vault at key version 1 together with the owner's
// membership. The owner holds a sealed key like every other member.
func (r *vaultRepository) CreateVault(ctx context.Context, vault models.Vault, ownerKey models.WrappedVaultKey) (models.Vault, error) {
	log := logger.FromContext(ctx)

	vault.KeyVersion = 1
	vault.CreatedAt = time.Now().UTC()

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := execAffecting(ctx, tx, r.db.builder.
			Insert("vaults").
			Columns("vault_id", "name", "owner_id", "key_version", "created_at").
			Values(vault.VaultID, vault.Name, vault.OwnerID, vault.KeyVersion, vault.CreatedAt)); err != nil {
			return err
		}

		_, err := execAffecting(ctx, tx, r.db.builder.
			Insert("vault_members").
			Columns("vault_id", "user_id", "wrapped_key", "key_version").
			Values(vault.VaultID, vault.OwnerID, ownerKey.Ciphertext, vault.KeyVersion))
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.CreateVault").Str("vault_id", vault.VaultID).Msg("error creating vault")
		if r.db.errorClassificator.IsForeignKeyViolation(err) {
			return models.Vault{}, ErrNoUserWasFound
		}
		return models.Vault{}, err
	}

	return vault, nil
}

// GetVault implements [VaultRepository].
func (r *vaultRepository) GetVault(ctx context.Context, vaultID string) (models.Vault, error) {
	query, args, err := r.db.builder.
		Select("vault_id", "name", "owner_id", "key_version", "created_at").
		From("vaults").
		Where(sq.Eq{"vault_id": vaultID}).
		ToSql()
	if err != nil {
		return models.Vault{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var v models.Vault
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&v.VaultID, &v.Name, &v.OwnerID, &v.KeyVersion, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vault{}, ErrVaultNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*vaultRepository.GetVault").Msg("error selecting vault")
		return models.Vault{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return v, nil
}

// ListVaults returns every vault userID is a member of.
func (r *vaultRepository) ListVaults(ctx context.Context, userID int64) ([]models.Vault, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select("v.vault_id", "v.name", "v.owner_id", "v.key_version", "v.created_at").
		From("vaults v").
		Join("vault_members m ON m.vault_id = v.vault_id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("v.created_at", "v.vault_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.ListVaults").Msg("error selecting vaults")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	vaults := make([]models.Vault, 0)
	for rows.Next() {
		var v models.Vault
		if err := rows.Scan(&v.VaultID, &v.Name, &v.OwnerID, &v.KeyVersion, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		vaults = append(vaults, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return vaults, nil
}

// GetWrappedKey returns userID's sealed copy of the vault key or
// [ErrNotAMember].
func (r *vaultRepository) GetWrappedKey(ctx context.Context, vaultID string, userID int64) (models.WrappedVaultKey, error) {
	query, args, err := r.db.builder.
		Select("wrapped_key", "key_version").
		From("vault_members").
		Where(sq.Eq{"vault_id": vaultID, "user_id": userID}).
		ToSql()
	if err != nil {
		return models.WrappedVaultKey{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	key := models.WrappedVaultKey{VaultID: vaultID, UserID: userID}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&key.Ciphertext, &key.KeyVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WrappedVaultKey{}, ErrNotAMember
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*vaultRepository.GetWrappedKey").Msg("error selecting wrapped key")
		return models.WrappedVaultKey{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return key, nil
}

// AddMember stores a new member's wrapped key. The key must be sealed under
// the vault's current key version.
func (r *vaultRepository) AddMember(ctx context.Context, key models.WrappedVaultKey) error {
	log := logger.FromContext(ctx)

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.db.lockKeyVersion(ctx, tx, key.VaultID, key.KeyVersion); err != nil {
			return err
		}
		_, err := execAffecting(ctx, tx, r.db.builder.
			Insert("vault_members").
			Columns("vault_id", "user_id", "wrapped_key", "key_version").
			Values(key.VaultID, key.UserID, key.Ciphertext, key.KeyVersion))
		return err
	})

	switch {
	case err == nil:
		return nil
	case r.db.errorClassificator.IsUniqueViolation(err):
		return ErrMemberAlreadyExists
	case r.db.errorClassificator.IsForeignKeyViolation(err):
		return ErrNoUserWasFound
	default:
		log.Err(err).Str("func", "*vaultRepository.AddMember").Str("vault_id", key.VaultID).Msg("error adding member")
		return err
	}
}

// ListMembers returns the members of a vault with their public keys.
func (r *vaultRepository) ListMembers(ctx context.Context, vaultID string) ([]models.Member, error) {
	query, args, err := r.db.builder.
		Select("m.user_id", "u.login", "u.public_key").
		From("vault_members m").
		Join("users u ON u.user_id = m.user_id").
		Where(sq.Eq{"m.vault_id": vaultID}).
		OrderBy("m.user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*vaultRepository.ListMembers").Msg("error selecting members")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	members := make([]models.Member, 0)
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.Login, &m.PublicKey); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return members, nil
}

// Rotate implements [VaultRepository]. Inside one transaction it:
//   - bumps key_version, failing with [ErrVersionConflict] if req.KeyVersion
//     is stale;
//   - deletes the removed members;
//   - replaces the wrapped key of every remaining member;
//   - replaces the ciphertext of every secret.
//
// The rotation is rejected unless every remaining member and every secret
// ends up on the new version, so a client working from a stale listing
// cannot leave data under the old key.
func (r *vaultRepository) Rotate(ctx context.Context, vaultID string, req models.RotateRequest) (int64, error) {
	log := logger.FromContext(ctx)
	newVersion := req.KeyVersion + 1

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		n, err := execAffecting(ctx, tx, r.db.builder.
			Update("vaults").
			Set("key_version", newVersion).
			Where(sq.Eq{"vault_id": vaultID, "key_version": req.KeyVersion}))
		if err != nil {
			return err
		}
		if n == 0 {
			return r.db.missingVaultOrConflict(ctx, tx, vaultID)
		}

		if len(req.RemovedMembers) > 0 {
			if _, err := execAffecting(ctx, tx, r.db.builder.
				Delete("vault_members").
				Where(sq.Eq{"vault_id": vaultID, "user_id": req.RemovedMembers})); err != nil {
				return err
			}
		}

		for _, k := range req.WrappedKeys {
			n, err := execAffecting(ctx, tx, r.db.builder.
				Update("vault_members").
				Set("wrapped_key", k.Ciphertext).
				Set("key_version", newVersion).
				Where(sq.Eq{"vault_id": vaultID, "user_id": k.UserID}))
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: user %d", ErrNotAMember, k.UserID)
			}
		}
		if err := r.db.requireAllOnVersion(ctx, tx, "vault_members", vaultID, newVersion); err != nil {
			return err
		}

		for _, s := range req.Secrets {
			n, err := execAffecting(ctx, tx, r.db.builder.
				Update("secrets").
				Set("ciphertext", s.Ciphertext).
				Set("nonce", s.Nonce).
				Set("key_version", newVersion).
				Set("updated_at", time.Now().UTC()).
				Where(sq.Eq{
					"vault_id":    vaultID,
					"environment": s.Environment,
					"secret_key":  s.Key,
					"key_version": req.KeyVersion,
				}))
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: secret %s", ErrVersionConflict, s.SecretRef)
			}
		}
		return r.db.requireAllOnVersion(ctx, tx, "secrets", vaultID, newVersion)
	})
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.Rotate").Str("vault_id", vaultID).Msg("rotation rejected")
		return 0, err
	}

	log.Info().Str("vault_id", vaultID).Int64("key_version", newVersion).Msg("vault key rotated")
	return newVersion, nil
}

// lockKeyVersion checks that the vault is at version and takes a row lock
// on it for the rest of the transaction. The no-op UPDATE works the same on
// PostgreSQL and SQLite.
func (db *DB) lockKeyVersion(ctx context.Context, tx *sql.Tx, vaultID string, version int64) error {
	n, err := execAffecting(ctx, tx, db.builder.
		Update("vaults").
		Set("key_version", sq.Expr("key_version")).
		Where(sq.Eq{"vault_id": vaultID, "key_version": version}))
	if err != nil {
		return err
	}
	if n == 0 {
		return db.missingVaultOrConflict(ctx, tx, vaultID)
	}
	return nil
}

func (db *DB) missingVaultOrConflict(ctx context.Context, tx *sql.Tx, vaultID string) error {
	query, args, err := db.builder.Select("1").From("vaults").Where(sq.Eq{"vault_id": vaultID}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var one int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVaultNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return ErrVersionConflict
}

func (db *DB) requireAllOnVersion(ctx context.Context, tx *sql.Tx, table, vaultID string, version int64) error {
	query, args, err := db.builder.
		Select("COUNT(*)").
		From(table).
		Where(sq.Eq{"vault_id": vaultID}).
		Where(sq.NotEq{"key_version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var stale int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&stale); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if stale > 0 {
		return fmt.Errorf("%w: %d %s rows not rotated", ErrVersionConflict, stale, table)
	}
	return nil
}
