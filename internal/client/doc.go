// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the secret-keeper command line.
//
// Every invocation is its own session: commands that touch vaults prompt
// for the master password, unlock, do their work and lock again before the
// process exits. Nothing secret is written to disk.
package client
