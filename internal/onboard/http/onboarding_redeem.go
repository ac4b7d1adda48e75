package http

import (
	"net/http"

	"github.com/tutorden/platform/internal/onboard/failure"
	"github.com/tutorden/platform/internal/onboard/service"
	"github.com/tutorden/platform/pkg/httpx"
	"github.com/tutorden/platform/pkg/onboardsdk"
)

// minPasswordLength keeps trivially weak passwords out at the edge.
const minPasswordLength = 12

type OnboardingRedeemHandler struct {
	MigratorService *service.MigratorService
}

func (h *OnboardingRedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")

	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}
	if len(password) < minPasswordLength {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
			"password must be at least 12 characters")
		return
	}

	res, err := h.MigratorService.Migrate(r.Context(), service.MigrateInput{
		Secret:    token,
		Password:  password,
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
	})
	if err != nil {
		kind := failure.KindOf(err)
		switch kind {
		case failure.TokenNotFound:
			httpx.WriteError(w, http.StatusBadRequest, string(kind), "")
		case failure.AlreadyCompleted:
			httpx.WriteError(w, http.StatusConflict, string(kind),
				"This invitation has already been redeemed")
		case failure.TokenExpired:
			httpx.WriteError(w, http.StatusGone, string(kind),
				"This invitation link has expired; request a new one")
		default:
			// Infrastructure kinds. The cause was already logged by the
			// saga with its step name.
			httpx.WriteError(w, http.StatusInternalServerError, string(kind), "")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, onboardsdk.RedeemResponse{
		IdentityID:   res.IdentityID,
		Email:        res.Email,
		SessionToken: res.Session.Token,
		ExpiresAt:    res.Session.ExpiresAt,
	})
}
