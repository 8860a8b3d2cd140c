package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/internal/validators"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// authService is the concrete implementation of [AuthService].
//
// The auth hash a client sends is already a one-way function of its master
// key. The server keys it once more with HMAC so that a leaked users table
// cannot be replayed against the login endpoint.
type authService struct {
	userRepository store.UserRepository
	validator      validators.Validator

	// hashKey keys the HMAC over auth hashes and the fake salts handed out
	// for unknown logins.
	hashKey string

	tokenSignKey  string
	tokenIssuer   string
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs an [AuthService]. The returned service is safe
// for concurrent use.
func NewAuthService(userRepository store.UserRepository, validator validators.Validator, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository: userRepository,
		validator:      validator,
		hashKey:        cfg.PasswordHashKey,
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		logger:         logger,
	}
}

// RegisterUser validates and stores a new account. The returned user carries
// the assigned id and no auth hash.
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, user); err != nil {
		log.Err(err).Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	user.AuthHash = utils.HashString(user.AuthHash, a.hashKey)

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	registeredUser.AuthHash = ""
	return registeredUser, nil
}

// Params implements [AuthService].
func (a *authService) Params(ctx context.Context, req models.ParamsRequest) (models.KDFParams, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, req); err != nil {
		return models.KDFParams{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	params := models.KDFParams{
		Algorithm: crypto.InteractiveProfile.Algorithm,
		Time:      crypto.InteractiveProfile.Time,
		MemoryKiB: crypto.InteractiveProfile.MemoryKiB,
		Threads:   crypto.InteractiveProfile.Threads,
	}

	user, err := a.userRepository.FindUserByLogin(ctx, req.Login)
	switch {
	case err == nil:
		params.Salt = user.EncryptionSalt
	case errors.Is(err, store.ErrNoUserWasFound):
		params.Salt = a.fakeSalt(req.Login)
	default:
		log.Err(err).Msg("user search by login failed")
		return models.KDFParams{}, fmt.Errorf("user search by login failed: %w", err)
	}

	return params, nil
}

// fakeSalt is stable per login, so repeated queries for a missing account
// look like queries for an existing one.
func (a *authService) fakeSalt(login string) []byte {
	return utils.KeyedDigest([]byte("kdf-salt:"+login), a.hashKey)[:crypto.SaltSize]
}

// Login authenticates by auth hash. Unknown logins and wrong hashes both
// return [ErrWrongPassword].
func (a *authService) Login(ctx context.Context, req models.LoginRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, req); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	presented := utils.HashString(req.AuthHash, a.hashKey)

	foundUser, err := a.userRepository.FindUserByLogin(ctx, req.Login)
	if errors.Is(err, store.ErrNoUserWasFound) {
		log.Info().Str("login", req.Login).Msg("login attempt for unknown user")
		return models.User{}, ErrWrongPassword
	}
	if err != nil {
		log.Err(err).Msg("user search by login failed")
		return models.User{}, fmt.Errorf("user search by login failed: %w", err)
	}

	if !utils.EqualHashes(foundUser.AuthHash, presented) {
		log.Info().Int64("id", foundUser.UserID).Msg("wrong password")
		return models.User{}, ErrWrongPassword
	}

	foundUser.AuthHash = ""
	return foundUser, nil
}

// UpdateCredentials re-checks the current auth hash before replacing the
// password-dependent fields.
func (a *authService) UpdateCredentials(ctx context.Context, userID int64, req models.ChangeCredentialsRequest) error {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	user, err := a.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		log.Err(err).Int64("id", userID).Msg("user search by id failed")
		return fmt.Errorf("user search by id failed: %w", err)
	}

	if !utils.EqualHashes(user.AuthHash, utils.HashString(req.CurrentAuthHash, a.hashKey)) {
		return ErrWrongPassword
	}

	user.AuthHash = utils.HashString(req.AuthHash, a.hashKey)
	user.EncryptionSalt = req.EncryptionSalt
	user.WrappedPrivateKey = req.WrappedPrivateKey

	if err := a.userRepository.UpdateCredentials(ctx, user); err != nil {
		log.Err(err).Int64("id", userID).Msg("credentials update failed")
		return fmt.Errorf("credentials update failed: %w", err)
	}

	log.Info().Int64("id", userID).Msg("credentials updated")
	return nil
}

// FindMember returns the public profile of login.
func (a *authService) FindMember(ctx context.Context, login string) (models.Member, error) {
	if err := a.validator.Validate(ctx, models.ParamsRequest{Login: login}); err != nil {
		return models.Member{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	user, err := a.userRepository.FindUserByLogin(ctx, login)
	if err != nil {
		return models.Member{}, err
	}

	return models.Member{UserID: user.UserID, Login: user.Login, PublicKey: user.PublicKey}, nil
}

// CreateToken issues a signed JWT for user.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates a raw JWT. Every failure is reported as
// [ErrTokenIsExpiredOrInvalid].
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("token rejected")
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
