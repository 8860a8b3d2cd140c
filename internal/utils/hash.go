package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashString returns the hex-encoded HMAC-SHA256 of data under hashKey.
// The server stores client auth hashes in this form so a leaked users table
// cannot be replayed against the login endpoint without the server key.
func HashString(data string, hashKey string) string {
	return hex.EncodeToString(KeyedDigest([]byte(data), hashKey))
}

// KeyedDigest returns the raw HMAC-SHA256 of data under hashKey.
func KeyedDigest(data []byte, hashKey string) []byte {
	hasher := hmac.New(sha256.New, []byte(hashKey))
	hasher.Write(data)
	return hasher.Sum(nil)
}

// EqualHashes compares two hex digests in constant time.
func EqualHashes(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
