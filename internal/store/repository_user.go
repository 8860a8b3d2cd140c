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

var userColumns = []string{
	"user_id", "login", "auth_hash", "encryption_salt", "public_key",
	"wrapped_private_key", "wrapped_private_key_nonce", "created_at",
}

// userRepository is the SQL implementation of [UserRepository].
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] over db.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser inserts user and returns it with UserID and CreatedAt set.
// A taken login yields [ErrLoginAlreadyExists].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)
	user.CreatedAt = time.Now().UTC()

	query, args, err := r.db.builder.
		Insert("users").
		Columns("login", "auth_hash", "encryption_salt", "public_key", "wrapped_private_key", "wrapped_private_key_nonce", "created_at").
		Values(user.Login, user.AuthHash, user.EncryptionSalt, user.PublicKey, user.WrappedPrivateKey.Ciphertext, user.WrappedPrivateKey.Nonce, user.CreatedAt).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.db.QueryRowContext(ctx, query, args...).Scan(&user.UserID)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")
		if r.db.errorClassificator.IsUniqueViolation(err) {
			return models.User{}, ErrLoginAlreadyExists
		}
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return user, nil
}

// FindUserByLogin returns the user with the given login or
// [ErrNoUserWasFound].
func (r *userRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindUserByLogin", sq.Eq{"login": login})
}

// FindUserByID returns the user with the given id or [ErrNoUserWasFound].
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindUserByID", sq.Eq{"user_id": userID})
}

func (r *userRepository) findOne(ctx context.Context, funcName string, where sq.Eq) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var u models.User
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.UserID, &u.Login, &u.AuthHash, &u.EncryptionSalt, &u.PublicKey,
		&u.WrappedPrivateKey.Ciphertext, &u.WrappedPrivateKey.Nonce, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error selecting user")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return u, nil
}

// UpdateCredentials implements [UserRepository].
func (r *userRepository) UpdateCredentials(ctx context.Context, user models.User) error {
	log := logger.FromContext(ctx)

	n, err := execAffecting(ctx, r.db, r.db.builder.
		Update("users").
		Set("auth_hash", user.AuthHash).
		Set("encryption_salt", user.EncryptionSalt).
		Set("wrapped_private_key", user.WrappedPrivateKey.Ciphertext).
		Set("wrapped_private_key_nonce", user.WrappedPrivateKey.Nonce).
		Where(sq.Eq{"user_id": user.UserID}))
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateCredentials").Msg("error updating credentials")
		return err
	}
	if n == 0 {
		return ErrNoUserWasFound
	}
	return nil
}
