package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/service"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrForbidden:               http.StatusForbidden,
	service.ErrOwnerCannotBeRemoved:    http.StatusBadRequest,
	service.ErrShareLimitsExceeded:     http.StatusBadRequest,

	store.ErrLoginAlreadyExists:  http.StatusConflict,
	store.ErrNoUserWasFound:      http.StatusNotFound,
	store.ErrVaultNotFound:       http.StatusNotFound,
	store.ErrNotAMember:          http.StatusForbidden,
	store.ErrMemberAlreadyExists: http.StatusConflict,
	store.ErrSecretNotFound:      http.StatusNotFound,
	store.ErrShareNotFound:       http.StatusNotFound,
	store.ErrVersionConflict:     http.StatusConflict,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

// statusFromError returns the status for err and the message that may be
// shown to the caller. Unknown errors are 500 with a generic message.
func statusFromError(err error) (int, string) {
	for target, status := range errorStatusMap {
		if !errors.Is(err, target) {
			continue
		}
		switch {
		case status >= http.StatusInternalServerError:
			return status, http.StatusText(status)
		case status == http.StatusBadRequest:
			// validation detail refers to the caller's own input
			return status, err.Error()
		default:
			return status, target.Error()
		}
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// fail logs err and writes the mapped JSON error response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status, message := statusFromError(err)

	log := logger.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Err(err).Msg(msg)
	} else {
		log.Info().Err(err).Int("status", status).Msg(msg)
	}

	utils.WriteError(w, message, status)
}
