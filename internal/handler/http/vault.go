package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func (h *Handler) createVault(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req models.CreateVaultRequest
	if err := utils.DecodeJSON(r, &req, maxBodyBytes); err != nil {
		logger.FromRequest(r).Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	vault, err := h.services.VaultService.CreateVault(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, err, "vault creation failed")
		return
	}

	utils.WriteJSON(w, vault, http.StatusCreated)
}

func (h *Handler) listVaults(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	vaults, err := h.services.VaultService.ListVaults(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err, "listing vaults failed")
		return
	}
	if vaults == nil {
		vaults = []models.Vault{}
	}

	utils.WriteJSON(w, vaults, http.StatusOK)
}

func (h *Handler) getWrappedKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	key, err := h.services.VaultService.GetWrappedKey(r.Context(), userID, chi.URLParam(r, "vaultID"))
	if err != nil {
		h.fail(w, r, err, "wrapped key lookup failed")
		return
	}

	utils.WriteJSON(w, key, http.StatusOK)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	members, err := h.services.VaultService.ListMembers(r.Context(), userID, chi.URLParam(r, "vaultID"))
	if err != nil {
		h.fail(w, r, err, "listing members failed")
		return
	}
	if members == nil {
		members = []models.Member{}
	}

	utils.WriteJSON(w, members, http.StatusOK)
}

func (h *Handler) grantAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req models.GrantRequest
	if err := utils.DecodeJSON(r, &req, maxBodyBytes); err != nil {
		logger.FromRequest(r).Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.VaultService.GrantAccess(r.Context(), userID, chi.URLParam(r, "vaultID"), req); err != nil {
		h.fail(w, r, err, "granting access failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) rotate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req models.RotateRequest
	if err := utils.DecodeJSON(r, &req, maxBodyBytes); err != nil {
		logger.FromRequest(r).Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	vaultID := chi.URLParam(r, "vaultID")
	version, err := h.services.VaultService.Rotate(r.Context(), userID, vaultID, req)
	if err != nil {
		h.fail(w, r, err, "key rotation failed")
		return
	}

	logger.FromRequest(r).Info().
		Str("vault_id", vaultID).
		Int64("key_version", version).
		Int("removed", len(req.RemovedMembers)).
		Msg("vault key rotated")

	utils.WriteJSON(w, models.RotateResponse{KeyVersion: version}, http.StatusOK)
}
