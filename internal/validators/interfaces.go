// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks the shape of client requests before they reach
// the store: identifier syntax, key and nonce lengths, version numbers.
//
// The server cannot check that a ciphertext decrypts, only that it is
// well formed. Everything beyond that is the client's responsibility.
package validators

import "context"

// Validator validates a value, optionally restricted to the named fields.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
