package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// putSecret creates or replaces a secret. The vault id comes from the path
// and overrides whatever the body says.
func (h *Handler) putSecret(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var secret models.EncryptedSecret
	if err := utils.DecodeJSON(r, &secret, maxBodyBytes); err != nil {
		logger.FromRequest(r).Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	secret.VaultID = chi.URLParam(r, "vaultID")

	saved, err := h.services.VaultService.PutSecret(r.Context(), userID, secret)
	if err != nil {
		h.fail(w, r, err, "saving secret failed")
		return
	}

	utils.WriteJSON(w, saved, http.StatusOK)
}

// listSecrets lists a vault's secrets, optionally narrowed by the
// environment query parameter.
func (h *Handler) listSecrets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	secrets, err := h.services.VaultService.ListSecrets(r.Context(), userID,
		chi.URLParam(r, "vaultID"), r.URL.Query().Get("environment"))
	if err != nil {
		h.fail(w, r, err, "listing secrets failed")
		return
	}
	if secrets == nil {
		secrets = []models.EncryptedSecret{}
	}

	utils.WriteJSON(w, secrets, http.StatusOK)
}

func (h *Handler) getSecret(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	secret, err := h.services.VaultService.GetSecret(r.Context(), userID, secretRefFromPath(r))
	if err != nil {
		h.fail(w, r, err, "reading secret failed")
		return
	}

	utils.WriteJSON(w, secret, http.StatusOK)
}

func (h *Handler) deleteSecret(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.services.VaultService.DeleteSecret(r.Context(), userID, secretRefFromPath(r)); err != nil {
		h.fail(w, r, err, "deleting secret failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func secretRefFromPath(r *http.Request) models.SecretRef {
	return models.SecretRef{
		VaultID:     chi.URLParam(r, "vaultID"),
		Environment: chi.URLParam(r, "environment"),
		Key:         chi.URLParam(r, "key"),
	}
}
