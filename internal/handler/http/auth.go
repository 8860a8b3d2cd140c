package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var user models.User
	if err := utils.DecodeJSON(r, &user, maxBodyBytes); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	registeredUser, err := h.services.AuthService.RegisterUser(ctx, user)
	if err != nil {
		h.fail(w, r, err, "user registration failed")
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, registeredUser)
	if err != nil {
		h.fail(w, r, err, "creation of token failed")
		return
	}

	log.Info().Int64("id", registeredUser.UserID).Msg("user registered")

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	utils.WriteJSON(w, registeredUser, http.StatusCreated)
}

func (h *Handler) params(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.ParamsRequest
	if err := utils.DecodeJSON(r, &req, maxBodyBytes); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	params, err := h.services.AuthService.Params(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "kdf params lookup failed")
		return
	}

	utils.WriteJSON(w, params, http.StatusOK)
}

// login answers with the account's key material so the client can unwrap
// its private key. The token goes in the Authorization header.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := utils.DecodeJSON(r, &req, maxBodyBytes); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	foundUser, err := h.services.AuthService.Login(ctx, req)
	if err != nil {
		h.fail(w, r, err, "login failed")
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, foundUser)
	if err != nil {
		h.fail(w, r, err, "creation of token failed")
		return
	}

	log.Debug().Int64("id", foundUser.UserID).Msg("user successfully logged in")

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	utils.WriteJSON(w, foundUser, http.StatusOK)
}

func (h *Handler) updateCredentials(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req models.ChangeCredentialsRequest
	if err := utils.DecodeJSON(r, &req, maxBodyBytes); err != nil {
		logger.FromRequest(r).Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.UpdateCredentials(r.Context(), userID, req); err != nil {
		h.fail(w, r, err, "credentials update failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// findMember returns the public key of a user so a vault owner can seal
// the vault key to them.
func (h *Handler) findMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.services.AuthService.FindMember(r.Context(), chi.URLParam(r, "login"))
	if err != nil {
		h.fail(w, r, err, "member lookup failed")
		return
	}

	utils.WriteJSON(w, member, http.StatusOK)
}

// userIDFromRequest reads the id stored by the auth middleware. It answers
// 401 itself when the id is missing.
func userIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, found := utils.GetUserIDFromContext(r.Context())
	if !found {
		logger.FromRequest(r).Error().Msg("no user ID was given")
		utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}
