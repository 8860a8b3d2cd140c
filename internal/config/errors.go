package config

import "errors"

// Validation errors returned when a configuration group is incomplete.
var (
	// ErrInvalidAppConfigs indicates missing secrets or a non-positive
	// token duration.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidStorageConfigs indicates an empty DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidServerConfigs indicates a missing listen address or timeout.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidShareConfigs indicates non-positive share limits or a bad
	// base URL.
	ErrInvalidShareConfigs = errors.New("invalid share configuration")
	// ErrInvalidAdapterConfigs indicates a missing or malformed server URL
	// on the client.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
)
