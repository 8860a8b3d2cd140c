// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-secret-keeper/internal/adapter"
)

// Describe turns err into the line shown to the user. Transport failures are
// collapsed into one message; everything else keeps its own text.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case isNetworkError(err):
		return "server unavailable: check the network and ADAPTER_ADDRESS"
	case errors.Is(err, adapter.ErrTooManyRequests):
		return "too many requests, try again later"
	case errors.Is(err, adapter.ErrConflict):
		return fmt.Sprintf("%v (someone else may have changed the vault, retry)", err)
	}
	return err.Error()
}

// PrintError writes err to w in the error style.
func PrintError(w io.Writer, err error) {
	s := newStyles(w)
	fmt.Fprintln(w, s.error.Render("error:"), Describe(err))
}

func isNetworkError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded")
}
