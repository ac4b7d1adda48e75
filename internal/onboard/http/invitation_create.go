package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tutorden/platform/internal/onboard/domain"
	"github.com/tutorden/platform/internal/onboard/service"
	"github.com/tutorden/platform/pkg/httpx"
	"github.com/tutorden/platform/pkg/onboardsdk"
	"github.com/tutorden/platform/pkg/slogx"
)

type InvitationCreateHandler struct {
	InvitationService *service.InvitationService
}

func (h *InvitationCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req onboardsdk.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	res, err := h.InvitationService.Create(ctx, service.CreateInvitationInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Role:       domain.Role(req.Role),
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInvitation):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, service.ErrDuplicateInvitation):
			httpx.WriteError(w, http.StatusConflict, "duplicate_invitation",
				"An outstanding invitation already exists for this email")
		default:
			log.Error("failed to create invitation", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error",
				"Failed to create invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, onboardsdk.CreateInvitationResponse{
		InvitationID: res.InvitationID,
		Status:       string(res.Status),
		TokenExpiry:  res.TokenExpiry,
	})
}
