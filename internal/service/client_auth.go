// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/adapter"
	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/internal/keychain"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/session"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type clientAuthService struct {
	server  adapter.ServerAdapter
	kdf     crypto.Deriver
	profile crypto.KDFProfile
	session *session.Cache

	logger *logger.Logger
}

// NewClientAuthService derives master keys with kdf. profile is what kdf
// runs; server-reported parameters must match it.
func NewClientAuthService(server adapter.ServerAdapter, kdf crypto.Deriver, profile crypto.KDFProfile, cache *session.Cache, logger *logger.Logger) ClientAuthService {
	return &clientAuthService{
		server:  server,
		kdf:     kdf,
		profile: profile,
		session: cache,
		logger:  logger,
	}
}

func (s *clientAuthService) Register(ctx context.Context, login, password string) (models.User, error) {
	if err := s.session.BeginUnlock(); err != nil {
		return models.User{}, err
	}
	unlocked, authenticated := false, false
	defer func() {
		if !unlocked {
			s.fail(authenticated)
		}
	}()

	salt, err := s.kdf.GenerateSalt()
	if err != nil {
		return models.User{}, err
	}
	masterKey, err := s.kdf.Derive(password, salt)
	if err != nil {
		return models.User{}, err
	}
	defer crypto.Wipe(masterKey)

	authHash, err := authHashHex(masterKey)
	if err != nil {
		return models.User{}, err
	}

	identity, err := keychain.GenerateIdentity()
	if err != nil {
		return models.User{}, err
	}
	defer crypto.Wipe(identity.PrivateKey[:])

	wrapped, err := keychain.ProtectPrivateKey(identity.PrivateKey[:], masterKey)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.server.Register(ctx, models.User{
		Login:             login,
		AuthHash:          authHash,
		EncryptionSalt:    salt,
		PublicKey:         identity.PublicKey[:],
		WrappedPrivateKey: wrapped,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	authenticated = true

	err = s.session.SetIdentity(session.Account{
		UserID:    user.UserID,
		Login:     login,
		PublicKey: identity.PublicKey[:],
	}, masterKey, identity.PrivateKey[:])
	if err != nil {
		return models.User{}, err
	}
	unlocked = true

	s.logger.Info().Int64("user_id", user.UserID).Str("login", login).Msg("registered")
	return user, nil
}

func (s *clientAuthService) Unlock(ctx context.Context, login, password string) error {
	if err := s.session.BeginUnlock(); err != nil {
		return err
	}
	unlocked, authenticated := false, false
	defer func() {
		if !unlocked {
			s.fail(authenticated)
		}
	}()

	masterKey, err := s.deriveMasterKey(ctx, login, password)
	if err != nil {
		return err
	}
	defer crypto.Wipe(masterKey)

	authHash, err := authHashHex(masterKey)
	if err != nil {
		return err
	}

	user, err := s.server.Login(ctx, models.LoginRequest{Login: login, AuthHash: authHash})
	if err != nil {
		if errors.Is(err, adapter.ErrUnauthorized) {
			return ErrUnlockFailed
		}
		return fmt.Errorf("login: %w", err)
	}
	authenticated = true

	privateKey, err := keychain.Unlock(user.WrappedPrivateKey, masterKey)
	if err != nil {
		s.logger.Warn().Str("login", login).Msg("private key did not unwrap")
		return ErrUnlockFailed
	}
	defer crypto.Wipe(privateKey)

	if err = ctx.Err(); err != nil {
		return err
	}

	err = s.session.SetIdentity(session.Account{
		UserID:    user.UserID,
		Login:     login,
		PublicKey: user.PublicKey,
	}, masterKey, privateKey)
	if err != nil {
		return err
	}
	unlocked = true

	s.logger.Info().Int64("user_id", user.UserID).Msg("session unlocked")
	return nil
}

// fail resets an unlock that did not complete. A token issued on the way is
// dropped as well, so nothing authenticated outlives the failed attempt.
func (s *clientAuthService) fail(authenticated bool) {
	s.session.FailUnlock()
	if authenticated {
		s.server.SetToken("")
	}
}

func (s *clientAuthService) Lock() {
	s.session.Clear()
	s.server.SetToken("")
}

func (s *clientAuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	account, err := s.session.Account()
	if err != nil {
		return err
	}
	current, err := s.session.MasterKey()
	if err != nil {
		return err
	}
	defer crypto.Wipe(current)

	oldKey, err := s.deriveMasterKey(ctx, account.Login, oldPassword)
	if err != nil {
		return err
	}
	defer crypto.Wipe(oldKey)
	if subtle.ConstantTimeCompare(oldKey, current) != 1 {
		return ErrUnlockFailed
	}

	currentHash, err := authHashHex(oldKey)
	if err != nil {
		return err
	}

	privateKey, err := s.session.PrivateKey()
	if err != nil {
		return err
	}
	defer crypto.Wipe(privateKey)

	salt, err := s.kdf.GenerateSalt()
	if err != nil {
		return err
	}
	newKey, err := s.kdf.Derive(newPassword, salt)
	if err != nil {
		return err
	}
	defer crypto.Wipe(newKey)

	newHash, err := authHashHex(newKey)
	if err != nil {
		return err
	}
	wrapped, err := keychain.ProtectPrivateKey(privateKey, newKey)
	if err != nil {
		return err
	}

	err = s.server.UpdateCredentials(ctx, models.ChangeCredentialsRequest{
		CurrentAuthHash:   currentHash,
		AuthHash:          newHash,
		EncryptionSalt:    salt,
		WrappedPrivateKey: wrapped,
	})
	if err != nil {
		if errors.Is(err, adapter.ErrUnauthorized) {
			return ErrUnlockFailed
		}
		return fmt.Errorf("update credentials: %w", err)
	}

	// the cache has no in-place key swap; re-enter it with the new master key
	s.session.Clear()
	if err = s.session.BeginUnlock(); err != nil {
		return err
	}
	if err = s.session.SetIdentity(account, newKey, privateKey); err != nil {
		s.session.FailUnlock()
		return err
	}

	s.logger.Info().Int64("user_id", account.UserID).Msg("password changed")
	return nil
}

// deriveMasterKey fetches the KDF parameters for login and runs the local
// KDF. Parameters that differ from the compiled profile are refused rather
// than followed, so a server cannot weaken the derivation.
func (s *clientAuthService) deriveMasterKey(ctx context.Context, login, password string) ([]byte, error) {
	params, err := s.server.Params(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("fetch kdf params: %w", err)
	}

	p := s.profile
	if params.Algorithm != p.Algorithm || params.Time != p.Time ||
		params.MemoryKiB != p.MemoryKiB || params.Threads != p.Threads ||
		len(params.Salt) != crypto.SaltSize {
		return nil, ErrKDFMismatch
	}

	return s.kdf.Derive(password, params.Salt)
}

func authHashHex(masterKey []byte) (string, error) {
	h, err := crypto.DeriveAuthHash(masterKey)
	if err != nil {
		return "", err
	}
	defer crypto.Wipe(h)
	return hex.EncodeToString(h), nil
}
