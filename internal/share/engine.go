package share

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
)

// ErrPasswordRequired is returned by [Engine.Open] for a protected link when
// no password was supplied. Callers prompt and retry.
var ErrPasswordRequired = errors.New("share link is password protected")

// Draft is a share ready for upload: the server gets Ciphertext and Nonce,
// the fragment stays with the sender.
type Draft struct {
	Ciphertext []byte
	Nonce      []byte
	Fragment   string
}

// Engine creates and opens ephemeral share payloads. Each share has its own
// random key with no relation to any vault or identity key.
type Engine struct {
	kdf crypto.Deriver
}

// NewEngine returns an Engine that protects link passwords with kdf.
func NewEngine(kdf crypto.Deriver) *Engine {
	return &Engine{kdf: kdf}
}

// Create encrypts content under a fresh share key. With a non-empty
// password the share key is itself wrapped under a key derived from the
// password and a fresh salt, and only the wrapped form enters the fragment.
func (e *Engine) Create(content []byte, password string) (Draft, error) {
	shareKey, err := crypto.GenerateKey()
	if err != nil {
		return Draft{}, fmt.Errorf("generate share key: %w", err)
	}
	defer crypto.Wipe(shareKey)

	payload, err := crypto.Encrypt(content, shareKey, nil)
	if err != nil {
		return Draft{}, fmt.Errorf("encrypt share payload: %w", err)
	}

	if password == "" {
		return Draft{
			Ciphertext: payload.Ciphertext,
			Nonce:      payload.Nonce,
			Fragment:   ComposeFragment(Fragment{Key: shareKey}),
		}, nil
	}

	salt, err := e.kdf.GenerateSalt()
	if err != nil {
		return Draft{}, fmt.Errorf("generate link salt: %w", err)
	}
	linkKey, err := e.kdf.Derive(password, salt)
	if err != nil {
		return Draft{}, err
	}
	defer crypto.Wipe(linkKey)

	wrapped, err := crypto.Encrypt(shareKey, linkKey, nil)
	if err != nil {
		return Draft{}, fmt.Errorf("wrap share key: %w", err)
	}

	return Draft{
		Ciphertext: payload.Ciphertext,
		Nonce:      payload.Nonce,
		Fragment: ComposeFragment(Fragment{
			Salt:       salt,
			Nonce:      wrapped.Nonce,
			WrappedKey: wrapped.Ciphertext,
		}),
	}, nil
}

// Open recovers the shared content from a fragment and the stored payload.
func (e *Engine) Open(fragment, password string, ciphertext, nonce []byte) ([]byte, error) {
	shareKey, err := e.UnlockFragment(fragment, password)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(shareKey)

	return OpenWithKey(shareKey, ciphertext, nonce)
}

// UnlockFragment returns the share key carried by fragment, unwrapping it
// with password when the link is protected. Nothing is fetched, so a wrong
// password costs no view. The caller owns the returned key and wipes it.
func (e *Engine) UnlockFragment(fragment, password string) ([]byte, error) {
	f, err := ParseFragment(fragment)
	if err != nil {
		return nil, err
	}
	return e.shareKey(f, password)
}

// CheckPassword reports whether password unlocks fragment.
func (e *Engine) CheckPassword(fragment, password string) error {
	shareKey, err := e.UnlockFragment(fragment, password)
	if err != nil {
		return err
	}
	crypto.Wipe(shareKey)
	return nil
}

// OpenWithKey decrypts a stored payload with a key from [Engine.UnlockFragment].
func OpenWithKey(shareKey, ciphertext, nonce []byte) ([]byte, error) {
	return crypto.Decrypt(ciphertext, nonce, shareKey, nil)
}

func (e *Engine) shareKey(f Fragment, password string) ([]byte, error) {
	if !f.Protected() {
		if len(f.Key) != crypto.KeySize {
			return nil, crypto.ErrAuthenticationFailed
		}
		return bytes.Clone(f.Key), nil
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	linkKey, err := e.kdf.Derive(password, f.Salt)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(linkKey)

	shareKey, err := crypto.Decrypt(f.WrappedKey, f.Nonce, linkKey, nil)
	if err != nil {
		return nil, err
	}
	if len(shareKey) != crypto.KeySize {
		crypto.Wipe(shareKey)
		return nil, crypto.ErrAuthenticationFailed
	}
	return shareKey, nil
}
