package service

import "errors"

// Server-side errors.
var (
	ErrInvalidDataProvided     = errors.New("invalid data provided")
	ErrWrongPassword           = errors.New("wrong password")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrForbidden               = errors.New("operation not permitted for this user")
	ErrOwnerCannotBeRemoved    = errors.New("vault owner cannot be removed")
	ErrShareLimitsExceeded     = errors.New("share ttl or view count exceeds server limits")
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
)

// Client-side errors. Unlock and share failures are deliberately coarse: a
// wrong password and tampered data must look the same to the caller.
var (
	ErrUnlockFailed     = errors.New("invalid password or corrupted data")
	ErrShareUnavailable = errors.New("link invalid, expired, or exhausted")
	ErrNotRegistered    = errors.New("no such user")
	ErrKDFMismatch      = errors.New("server returned unexpected KDF parameters")
	ErrRevokeOwner      = errors.New("the vault owner cannot be revoked")
	ErrNotVaultMember   = errors.New("user is not a member of this vault")
	ErrVaultUnknown     = errors.New("vault not found or not accessible")
)
