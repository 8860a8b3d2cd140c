// Package keychain implements the client-side key hierarchy on top of
// package crypto:
//
//	password ──KDF──▶ master key ──AEAD──▶ wrapped identity private key
//	identity public key ──sealed box──▶ wrapped vault key (one per member)
//	vault key ──AEAD + AAD──▶ encrypted secret value
//
// Every function is stateless. Unwrap failures always surface as
// [crypto.ErrAuthenticationFailed] so a wrong password and corrupted storage
// look the same to the caller.
package keychain
