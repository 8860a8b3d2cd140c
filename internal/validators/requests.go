package validators

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// Field names for scoped validation of [models.User] and
// [models.EncryptedSecret].
const (
	FieldLogin             = "login"
	FieldAuthHash          = "auth_hash"
	FieldEncryptionSalt    = "encryption_salt"
	FieldPublicKey         = "public_key"
	FieldWrappedPrivateKey = "wrapped_private_key"

	FieldVaultID     = "vault_id"
	FieldEnvironment = "environment"
	FieldSecretKey   = "key"
	FieldCiphertext  = "ciphertext"
	FieldKeyVersion  = "key_version"
)

var (
	loginPattern       = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)
	environmentPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)
	secretKeyPattern   = regexp.MustCompile(`^[A-Za-z0-9._-]{1,256}$`)
	vaultIDPattern     = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)
)

// wrapped private key = 32-byte key + Poly1305 tag
const wrappedPrivateKeySize = crypto.PrivateKeySize + crypto.Overhead

// RequestValidator implements [Validator] for every request model the API
// accepts.
type RequestValidator struct{}

func NewRequestValidator() Validator {
	return &RequestValidator{}
}

// Validate dispatches on the dynamic type of obj. Both value and pointer
// forms are accepted. Field scoping applies to [models.User] and
// [models.EncryptedSecret]; other types are always validated in full.
func (v *RequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.User:
		return v.validateUser(value, fields...)
	case *models.User:
		return v.validateUser(*value, fields...)

	case models.LoginRequest:
		return v.validateLogin(value)
	case *models.LoginRequest:
		return v.validateLogin(*value)

	case models.ParamsRequest:
		return v.validateUser(models.User{Login: value.Login}, FieldLogin)
	case *models.ParamsRequest:
		return v.validateUser(models.User{Login: value.Login}, FieldLogin)

	case models.ChangeCredentialsRequest:
		return v.validateChangeCredentials(value)
	case *models.ChangeCredentialsRequest:
		return v.validateChangeCredentials(*value)

	case models.CreateVaultRequest:
		return v.validateCreateVault(value)
	case *models.CreateVaultRequest:
		return v.validateCreateVault(*value)

	case models.GrantRequest:
		return v.validateGrant(value)
	case *models.GrantRequest:
		return v.validateGrant(*value)

	case models.RotateRequest:
		return v.validateRotate(value)
	case *models.RotateRequest:
		return v.validateRotate(*value)

	case models.EncryptedSecret:
		return v.validateSecret(value, fields...)
	case *models.EncryptedSecret:
		return v.validateSecret(*value, fields...)

	case models.CreateShareRequest:
		return v.validateCreateShare(value)
	case *models.CreateShareRequest:
		return v.validateCreateShare(*value)

	default:
		return ErrUnsupportedType
	}
}

func (v *RequestValidator) validateUser(user models.User, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldAuthHash, FieldEncryptionSalt, FieldPublicKey, FieldWrappedPrivateKey}
	}

	for _, f := range fields {
		switch f {
		case FieldLogin:
			if !loginPattern.MatchString(user.Login) {
				return ErrInvalidLogin
			}
		case FieldAuthHash:
			if user.AuthHash == "" {
				return ErrEmptyAuthHash
			}
		case FieldEncryptionSalt:
			if len(user.EncryptionSalt) != crypto.SaltSize {
				return ErrInvalidSalt
			}
		case FieldPublicKey:
			if len(user.PublicKey) != crypto.PublicKeySize {
				return ErrInvalidPublicKey
			}
		case FieldWrappedPrivateKey:
			if err := validateWrappedPrivateKey(user.WrappedPrivateKey); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

func validateWrappedPrivateKey(w models.WrappedPrivateKey) error {
	if len(w.Nonce) != crypto.NonceSize || len(w.Ciphertext) != wrappedPrivateKeySize {
		return ErrInvalidWrappedPrivateKey
	}
	return nil
}

func (v *RequestValidator) validateLogin(req models.LoginRequest) error {
	return v.validateUser(models.User{Login: req.Login, AuthHash: req.AuthHash}, FieldLogin, FieldAuthHash)
}

func (v *RequestValidator) validateChangeCredentials(req models.ChangeCredentialsRequest) error {
	if req.CurrentAuthHash == "" {
		return ErrEmptyAuthHash
	}
	return v.validateUser(models.User{
		AuthHash:          req.AuthHash,
		EncryptionSalt:    req.EncryptionSalt,
		WrappedPrivateKey: req.WrappedPrivateKey,
	}, FieldAuthHash, FieldEncryptionSalt, FieldWrappedPrivateKey)
}

func (v *RequestValidator) validateCreateVault(req models.CreateVaultRequest) error {
	if n := utf8.RuneCountInString(req.Name); n == 0 || n > 128 {
		return ErrInvalidVaultName
	}
	if len(req.WrappedKey) != crypto.SealedKeySize {
		return ErrInvalidWrappedVaultKey
	}
	return nil
}

func (v *RequestValidator) validateGrant(req models.GrantRequest) error {
	switch {
	case req.UserID <= 0:
		return ErrInvalidUserID
	case len(req.WrappedKey) != crypto.SealedKeySize:
		return ErrInvalidWrappedVaultKey
	case req.KeyVersion <= 0:
		return ErrInvalidKeyVersion
	}
	return nil
}

// validateRotate checks a rotation for internal consistency. Whether it
// covers every member and secret is checked by the store inside the
// rotation transaction.
func (v *RequestValidator) validateRotate(req models.RotateRequest) error {
	if req.KeyVersion <= 0 {
		return ErrInvalidKeyVersion
	}
	if len(req.WrappedKeys) == 0 {
		return ErrNoWrappedKeys
	}

	removed := make(map[int64]struct{}, len(req.RemovedMembers))
	for _, id := range req.RemovedMembers {
		if id <= 0 {
			return ErrInvalidUserID
		}
		removed[id] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(req.WrappedKeys))
	for _, k := range req.WrappedKeys {
		if k.UserID <= 0 {
			return ErrInvalidUserID
		}
		if len(k.Ciphertext) != crypto.SealedKeySize {
			return ErrInvalidWrappedVaultKey
		}
		if _, ok := seen[k.UserID]; ok {
			return ErrDuplicateMember
		}
		if _, ok := removed[k.UserID]; ok {
			return ErrRemovedMemberRewrapped
		}
		seen[k.UserID] = struct{}{}
	}

	for _, s := range req.Secrets {
		if err := v.validateSecret(s, FieldEnvironment, FieldSecretKey, FieldCiphertext); err != nil {
			return fmt.Errorf("secret %s: %w", s.SecretRef, err)
		}
	}
	return nil
}

func (v *RequestValidator) validateSecret(s models.EncryptedSecret, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldVaultID, FieldEnvironment, FieldSecretKey, FieldCiphertext, FieldKeyVersion}
	}

	for _, f := range fields {
		switch f {
		case FieldVaultID:
			if !vaultIDPattern.MatchString(s.VaultID) {
				return ErrInvalidVaultID
			}
		case FieldEnvironment:
			if !environmentPattern.MatchString(s.Environment) {
				return ErrInvalidEnvironment
			}
		case FieldSecretKey:
			if !secretKeyPattern.MatchString(s.Key) {
				return ErrInvalidSecretKey
			}
		case FieldCiphertext:
			if len(s.Nonce) != crypto.NonceSize {
				return ErrInvalidNonce
			}
			if len(s.Ciphertext) < crypto.Overhead {
				return ErrInvalidCiphertext
			}
		case FieldKeyVersion:
			if s.KeyVersion <= 0 {
				return ErrInvalidKeyVersion
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

func (v *RequestValidator) validateCreateShare(req models.CreateShareRequest) error {
	switch {
	case len(req.Nonce) != crypto.NonceSize:
		return ErrInvalidNonce
	case len(req.Ciphertext) < crypto.Overhead:
		return ErrInvalidCiphertext
	case req.TTLSeconds <= 0:
		return ErrInvalidTTL
	case req.MaxViews <= 0:
		return ErrInvalidMaxViews
	}
	return nil
}
