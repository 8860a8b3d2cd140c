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

var secretColumns = []string{"vault_id", "environment", "secret_key", "ciphertext", "nonce", "key_version", "updated_at"}

// secretRepository is the SQL implementation of [SecretRepository].
type secretRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSecretRepository constructs a [SecretRepository] over db.
func NewSecretRepository(db *DB, logger *logger.Logger) SecretRepository {
	logger.Debug().Msg("creating secret repository")
	return &secretRepository{db: db, logger: logger}
}

// PutSecret inserts or replaces a secret. The secret's KeyVersion must match
// the vault's current key version, otherwise [ErrVersionConflict].
func (r *secretRepository) PutSecret(ctx context.Context, secret models.EncryptedSecret) (models.EncryptedSecret, error) {
	log := logger.FromContext(ctx)
	secret.UpdatedAt = time.Now().UTC()

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.db.lockKeyVersion(ctx, tx, secret.VaultID, secret.KeyVersion); err != nil {
			return err
		}

		_, err := execAffecting(ctx, tx, r.db.builder.
			Insert("secrets").
			Columns(secretColumns...).
			Values(secret.VaultID, secret.Environment, secret.Key, secret.Ciphertext, secret.Nonce, secret.KeyVersion, secret.UpdatedAt).
			Suffix(`ON CONFLICT (vault_id, environment, secret_key) DO UPDATE SET
				ciphertext = excluded.ciphertext,
				nonce = excluded.nonce,
				key_version = excluded.key_version,
				updated_at = excluded.updated_at`))
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.PutSecret").Str("secret", secret.SecretRef.String()).Msg("error saving secret")
		return models.EncryptedSecret{}, err
	}

	return secret, nil
}

// GetSecret implements [SecretRepository].
func (r *secretRepository) GetSecret(ctx context.Context, ref models.SecretRef) (models.EncryptedSecret, error) {
	query, args, err := r.db.builder.
		Select(secretColumns...).
		From("secrets").
		Where(sq.Eq{"vault_id": ref.VaultID, "environment": ref.Environment, "secret_key": ref.Key}).
		ToSql()
	if err != nil {
		return models.EncryptedSecret{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	s, err := scanSecret(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.EncryptedSecret{}, ErrSecretNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*secretRepository.GetSecret").Msg("error selecting secret")
		return models.EncryptedSecret{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return s, nil
}

// ListSecrets returns the secrets of a vault, optionally limited to one
// environment.
func (r *secretRepository) ListSecrets(ctx context.Context, vaultID, environment string) ([]models.EncryptedSecret, error) {
	where := sq.Eq{"vault_id": vaultID}
	if environment != "" {
		where["environment"] = environment
	}

	query, args, err := r.db.builder.
		Select(secretColumns...).
		From("secrets").
		Where(where).
		OrderBy("environment", "secret_key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*secretRepository.ListSecrets").Msg("error selecting secrets")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	secrets := make([]models.EncryptedSecret, 0)
	for rows.Next() {
		s, err := scanSecret(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		secrets = append(secrets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return secrets, nil
}

// DeleteSecret implements [SecretRepository].
func (r *secretRepository) DeleteSecret(ctx context.Context, ref models.SecretRef) error {
	n, err := execAffecting(ctx, r.db, r.db.builder.
		Delete("secrets").
		Where(sq.Eq{"vault_id": ref.VaultID, "environment": ref.Environment, "secret_key": ref.Key}))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*secretRepository.DeleteSecret").Msg("error deleting secret")
		return err
	}
	if n == 0 {
		return ErrSecretNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSecret(row rowScanner) (models.EncryptedSecret, error) {
	var s models.EncryptedSecret
	err := row.Scan(&s.VaultID, &s.Environment, &s.Key, &s.Ciphertext, &s.Nonce, &s.KeyVersion, &s.UpdatedAt)
	return s, err
}
