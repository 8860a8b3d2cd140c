package store

import "errors"

// Sentinel errors returned by repositories. Match with [errors.Is].
var (
	// ErrLoginAlreadyExists is returned when registering a taken login.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when no user matches the lookup.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrVaultNotFound is returned when the vault does not exist.
	ErrVaultNotFound = errors.New("vault was not found")

	// ErrNotAMember is returned when a user has no wrapped key for a vault.
	ErrNotAMember = errors.New("user is not a member of the vault")

	// ErrMemberAlreadyExists is returned when granting access twice.
	ErrMemberAlreadyExists = errors.New("user is already a member of the vault")

	// ErrSecretNotFound is returned when the secret does not exist.
	ErrSecretNotFound = errors.New("secret was not found")

	// ErrShareNotFound is returned for a share that does not exist, has
	// expired or has no views left. The three cases are not distinguished.
	ErrShareNotFound = errors.New("share was not found")

	// ErrVersionConflict is returned when the key version supplied by the
	// client does not match the vault's current version, i.e. the vault key
	// was rotated since the client last read it.
	ErrVersionConflict = errors.New("vault key version conflict")
)

// Low-level database operation errors.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
	ErrExecutingStatement   = errors.New("failed to execute statement")
	ErrScanningRow          = errors.New("failed to scan row")
	ErrScanningRows         = errors.New("failed to scan rows")
)
