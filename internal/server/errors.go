// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errNoHTTPServer is returned when there is no router or no listen address.
// The API is the only transport, so there is nothing else to start.
var errNoHTTPServer = errors.New("http server is not configured")
