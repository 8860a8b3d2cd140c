package models

import "time"

// ShareRecord is what the server keeps for an ephemeral share link: only
// the payload ciphertext. The decryption key stays in the URL fragment.
type ShareRecord struct {
	ShareID    string    `json:"share_id"`
	Ciphertext []byte    `json:"ciphertext"`
	Nonce      []byte    `json:"nonce"`
	ExpiresAt  time.Time `json:"expires_at"`
	ViewsLeft  int       `json:"views_left"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// CreateShareRequest uploads a share payload.
type CreateShareRequest struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
	TTLSeconds int64  `json:"ttl_seconds"`
	MaxViews   int    `json:"max_views"`
}

// CreateShareResponse returns the id under which the payload was stored.
type CreateShareResponse struct {
	ShareID   string    `json:"share_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShareLink is what the sender hands out: the full URL including the
// fragment, and when the server will forget the payload.
type ShareLink struct {
	URL       string
	ExpiresAt time.Time
}
