package crypto

import "errors"

var (
	// ErrKDF is returned when key derivation cannot run: the engine was not
	// initialised, the salt has the wrong length or the profile is invalid.
	ErrKDF = errors.New("key derivation failed")

	// ErrAuthenticationFailed covers every AEAD or sealed-box open failure:
	// wrong key, wrong recipient, tampered ciphertext, nonce or tag. Callers
	// must not be able to tell these cases apart.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrEncoding is returned for malformed base64 or share fragments.
	ErrEncoding = errors.New("malformed encoding")

	// ErrInvalidKey is returned when a key has the wrong length.
	ErrInvalidKey = errors.New("invalid key length")
)
