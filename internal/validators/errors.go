package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidLogin             = errors.New("login must be 1-64 characters of letters, digits, '.', '_', '-' or '@'")
	ErrEmptyAuthHash            = errors.New("auth hash is required")
	ErrInvalidSalt              = errors.New("invalid encryption salt length")
	ErrInvalidPublicKey         = errors.New("invalid public key length")
	ErrInvalidWrappedPrivateKey = errors.New("invalid wrapped private key")
	ErrInvalidUserID            = errors.New("invalid user ID")
	ErrInvalidVaultID           = errors.New("invalid vault ID")
	ErrInvalidVaultName         = errors.New("vault name must be 1-128 characters")
	ErrInvalidWrappedVaultKey   = errors.New("invalid wrapped vault key length")
	ErrInvalidKeyVersion        = errors.New("invalid key version")
	ErrInvalidEnvironment       = errors.New("environment must be 1-64 characters of letters, digits, '.', '_' or '-'")
	ErrInvalidSecretKey         = errors.New("secret key must be 1-256 characters of letters, digits, '.', '_' or '-'")
	ErrInvalidNonce             = errors.New("invalid nonce length")
	ErrInvalidCiphertext        = errors.New("ciphertext is shorter than the authentication tag")
	ErrNoWrappedKeys            = errors.New("rotation must re-wrap the key for at least one member")
	ErrDuplicateMember          = errors.New("member listed more than once")
	ErrRemovedMemberRewrapped   = errors.New("removed member received a new wrapped key")
	ErrInvalidTTL               = errors.New("ttl must be positive")
	ErrInvalidMaxViews          = errors.New("max views must be positive")
)
