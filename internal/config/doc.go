// Package config loads, merges and validates configuration.
//
// Sources, lowest priority first (a later source overrides non-zero fields
// of an earlier one):
//  1. built-in defaults
//  2. JSON config file (path from CONFIG or -c/-config)
//  3. environment variables
//  4. command-line flags (server only)
//
// [GetStructuredConfig] is the server entry point, [GetClientConfig] the
// client one.
package config
