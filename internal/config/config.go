// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the full configuration tree. envPrefix tags are
// resolved by caarlos0/env.
type StructuredConfig struct {
	App     App     `envPrefix:"APP_"`
	Storage Storage `envPrefix:"STORAGE_"`
	Server  Server  `envPrefix:"SERVER_"`
	Share   Share   `envPrefix:"SHARE_"`
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// JSONFilePath is the optional JSON config file.
	// Env: CONFIG
	JSONFilePath string `env:"CONFIG"`
}

// App holds server-side secrets and token settings.
type App struct {
	// PasswordHashKey keys the HMAC applied to client auth hashes before
	// they are stored.
	// Env: APP_PASSWORD_HASH_KEY
	PasswordHashKey string `env:"PASSWORD_HASH_KEY"`

	// TokenSignKey signs access tokens (HS256).
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// Version is reported by /api/version.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups persistence settings.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds the database DSN. A postgres:// or postgresql:// DSN selects the
// pgx driver; anything else is treated as a SQLite file path.
type DB struct {
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds inbound HTTP settings.
type Server struct {
	// HTTPAddress is host:port to listen on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Share configures ephemeral share links.
type Share struct {
	// BaseURL is the public origin used when composing share URLs.
	// Env: SHARE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// ResolveRPS and ResolveBurst bound share lookups per client IP.
	// Env: SHARE_RESOLVE_RPS, SHARE_RESOLVE_BURST
	ResolveRPS   float64 `env:"RESOLVE_RPS"`
	ResolveBurst int     `env:"RESOLVE_BURST"`

	// MaxTTL and MaxViews cap what a client may request.
	// Env: SHARE_MAX_TTL, SHARE_MAX_VIEWS
	MaxTTL   time.Duration `env:"MAX_TTL"`
	MaxViews int           `env:"MAX_VIEWS"`

	// JanitorInterval is how often expired shares are purged.
	// Env: SHARE_JANITOR_INTERVAL
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL"`
}

// Adapter configures the client's connection to the server.
type Adapter struct {
	// HTTPAddress is the server base URL, e.g. http://localhost:8080.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// defaults returns the lowest-priority configuration layer.
func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   "go-secret-keeper",
			TokenDuration: 24 * time.Hour,
		},
		Server: Server{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 30 * time.Second,
		},
		Share: Share{
			BaseURL:         "http://localhost:8080",
			ResolveRPS:      1,
			ResolveBurst:    5,
			MaxTTL:          7 * 24 * time.Hour,
			MaxViews:        100,
			JanitorInterval: time.Minute,
		},
		Adapter: Adapter{
			HTTPAddress:    "http://localhost:8080",
			RequestTimeout: 30 * time.Second,
		},
	}
}

// GetStructuredConfig builds the server configuration from defaults, the
// JSON file, the environment and args (usually os.Args[1:]).
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(args).
		withJSON().
		build()
	if err != nil {
		return nil, err
	}
	return cfg, cfg.validate()
}
