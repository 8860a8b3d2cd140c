// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package share

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
)

const passwordTag = "pwd"

// Fragment is the key material carried after '#' in a share URL. Exactly one
// of the two forms is populated: Key for an open link, or Salt, Nonce and
// WrappedKey for a password-protected link.
type Fragment struct {
	Key []byte

	Salt       []byte
	Nonce      []byte
	WrappedKey []byte
}

// Protected reports whether the fragment needs a link password.
func (f Fragment) Protected() bool {
	return f.WrappedKey != nil
}

// encodings are tried in order when parsing. Links are always emitted with
// the first one, the rest exist for links produced by other clients.
var encodings = []*base64.Encoding{
	base64.RawURLEncoding,
	base64.URLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

func encode(b []byte) string {
	return encodings[0].EncodeToString(b)
}

func decode(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty field", crypto.ErrEncoding)
	}
	for _, enc := range encodings {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid base64", crypto.ErrEncoding)
}

// ComposeFragment renders f as "#<key>" or "#pwd:<salt>:<nonce>:<wrapped>".
func ComposeFragment(f Fragment) string {
	if f.Protected() {
		return "#" + strings.Join([]string{
			passwordTag,
			encode(f.Salt),
			encode(f.Nonce),
			encode(f.WrappedKey),
		}, ":")
	}
	return "#" + encode(f.Key)
}

// ParseFragment is the inverse of [ComposeFragment]. The leading '#' is
// optional. Any malformed input fails with [crypto.ErrEncoding].
func ParseFragment(s string) (Fragment, error) {
	s = strings.TrimPrefix(s, "#")
	if s == "" {
		return Fragment{}, fmt.Errorf("%w: empty fragment", crypto.ErrEncoding)
	}

	if !strings.HasPrefix(s, passwordTag+":") {
		key, err := decode(s)
		if err != nil {
			return Fragment{}, err
		}
		if len(key) != crypto.KeySize {
			return Fragment{}, fmt.Errorf("%w: key must be %d bytes, got %d", crypto.ErrEncoding, crypto.KeySize, len(key))
		}
		return Fragment{Key: key}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Fragment{}, fmt.Errorf("%w: protected fragment needs 4 fields, got %d", crypto.ErrEncoding, len(parts))
	}

	salt, err := decode(parts[1])
	if err != nil {
		return Fragment{}, err
	}
	nonce, err := decode(parts[2])
	if err != nil {
		return Fragment{}, err
	}
	wrapped, err := decode(parts[3])
	if err != nil {
		return Fragment{}, err
	}

	if len(salt) != crypto.SaltSize {
		return Fragment{}, fmt.Errorf("%w: salt must be %d bytes", crypto.ErrEncoding, crypto.SaltSize)
	}
	if len(nonce) != crypto.NonceSize {
		return Fragment{}, fmt.Errorf("%w: nonce must be %d bytes", crypto.ErrEncoding, crypto.NonceSize)
	}

	return Fragment{Salt: salt, Nonce: nonce, WrappedKey: wrapped}, nil
}
