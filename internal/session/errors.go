package session

import "errors"

var (
	// ErrLocked is returned when key material is requested from a cache
	// that has not been unlocked.
	ErrLocked = errors.New("session is locked")

	// ErrUnlockInProgress is returned by BeginUnlock while another unlock
	// is running.
	ErrUnlockInProgress = errors.New("unlock already in progress")

	// ErrAlreadyUnlocked is returned by BeginUnlock on an unlocked cache.
	ErrAlreadyUnlocked = errors.New("session already unlocked")

	// ErrInvalidTransition is returned when a state change is attempted from
	// the wrong state, e.g. SetIdentity without BeginUnlock.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrEmptyKey is returned when an empty key is offered to the cache.
	ErrEmptyKey = errors.New("empty key")
)
