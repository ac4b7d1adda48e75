// Package http exposes the onboarding service over HTTP: an admin-only
// invitation endpoint and the public validate/redeem pair.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tutorden/platform/internal/onboard/service"
	"github.com/tutorden/platform/internal/onboard/store"
	"github.com/tutorden/platform/pkg/httpx"
	"github.com/tutorden/platform/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	adminToken   string

	store             store.Store
	InvitationService *service.InvitationService
	ValidatorService  *service.ValidatorService
	MigratorService   *service.MigratorService
}

func NewRouter(buildVersion, adminToken string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		adminToken:   adminToken,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerInvitations()
	r.registerOnboarding()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerInvitations() {
	h := &InvitationCreateHandler{InvitationService: r.InvitationService}

	// Admin operation behind the static bearer token. Moderate limit:
	// batch onboarding of a class is legitimate, brute force is not.
	r.Mux.Handle("POST /v1/invitations",
		httpx.Chain(h,
			httpx.RequireBearerToken(r.adminToken),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerOnboarding() {
	validateHandler := &OnboardingValidateHandler{ValidatorService: r.ValidatorService}
	redeemHandler := &OnboardingRedeemHandler{MigratorService: r.MigratorService}

	// Both endpoints accept guessable secrets from the open internet,
	// so they get the strict per-IP limit.
	r.Mux.Handle("GET /v1/onboarding/validate",
		httpx.Chain(validateHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/onboarding/redeem",
		httpx.Chain(redeemHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
