package http

import (
	"net/http"

	"github.com/tutorden/platform/internal/onboard/failure"
	"github.com/tutorden/platform/internal/onboard/service"
	"github.com/tutorden/platform/pkg/httpx"
	"github.com/tutorden/platform/pkg/onboardsdk"
)

type OnboardingValidateHandler struct {
	ValidatorService *service.ValidatorService
}

func (h *OnboardingValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	snap, err := h.ValidatorService.Validate(r.Context(), token)
	if err != nil {
		kind := failure.KindOf(err)
		switch kind {
		case failure.TokenNotFound, failure.AlreadyCompleted:
			httpx.WriteError(w, http.StatusBadRequest, string(kind), "")
		case failure.TokenExpired:
			httpx.WriteError(w, http.StatusGone, string(kind), "")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, string(failure.Unknown), "")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, onboardsdk.ValidateResponse{
		ID:        snap.ID,
		FirstName: snap.FirstName,
		LastName:  snap.LastName,
		Email:     snap.Email,
		Role:      string(snap.Role),
	})
}
