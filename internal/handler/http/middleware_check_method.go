// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-secret-keeper/internal/utils"
)

// hideMethodNotAllowed is registered as the router's MethodNotAllowed
// handler. It answers 404 instead of chi's default 405 so that probing with
// the wrong method does not reveal which paths exist.
func hideMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}
