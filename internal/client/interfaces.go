// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run executes one command line and returns when it is done.
	Run(ctx context.Context, args []string) error
}

// Prompter asks the user for input.
type Prompter interface {
	// Secret reads a value without echo.
	Secret(prompt string) (string, error)
	// Line reads one visible line.
	Line(prompt string) (string, error)
}
