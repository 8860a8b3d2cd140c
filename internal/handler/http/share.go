package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func (h *Handler) createShare(w http.ResponseWriter, r *http.Request) {
	var req models.CreateShareRequest
	if err := utils.DecodeJSON(r, &req, maxBodyBytes); err != nil {
		logger.FromRequest(r).Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	resp, err := h.services.ShareService.CreateShare(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "share creation failed")
		return
	}

	utils.WriteJSON(w, resp, http.StatusCreated)
}

// openShare hands out the ciphertext and spends one view. It is public: the
// link holder authenticates by knowing the key in the fragment, which never
// reaches the server.
func (h *Handler) openShare(w http.ResponseWriter, r *http.Request) {
	rec, err := h.services.ShareService.ConsumeShare(r.Context(), chi.URLParam(r, "shareID"))
	if err != nil {
		h.fail(w, r, err, "share lookup failed")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, rec, http.StatusOK)
}
