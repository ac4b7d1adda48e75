package service_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tutorden/platform/internal/onboard/domain"
	"github.com/tutorden/platform/internal/onboard/identity"
	"github.com/tutorden/platform/internal/onboard/identity/local"
	"github.com/tutorden/platform/internal/onboard/notify"
	"github.com/tutorden/platform/internal/onboard/service"
	"github.com/tutorden/platform/internal/onboard/store"
	"github.com/tutorden/platform/internal/onboard/store/drivers/sqlite"
	"github.com/tutorden/platform/pkg/jwtx"
)

const baseURL = "https://app.tutorden.example"

// recordingDispatcher captures outbound messages instead of delivering
// them.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (d *recordingDispatcher) Send(_ context.Context, msg notify.Message) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return "", d.err
	}
	d.sent = append(d.sent, msg)
	return "msg-test", nil
}

func (d *recordingDispatcher) lastLink(t *testing.T) string {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.sent)
	return d.sent[len(d.sent)-1].Variables["link"]
}

// flakyProvider wraps a real provider with switchable failures.
type flakyProvider struct {
	identity.Provider
	failCreate bool
	failSignIn bool
}

func (p *flakyProvider) Create(ctx context.Context, email, password string, attrs identity.Attributes) (domain.Identity, error) {
	if p.failCreate {
		return domain.Identity{}, errors.New("provider down")
	}
	return p.Provider.Create(ctx, email, password, attrs)
}

func (p *flakyProvider) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	if p.failSignIn {
		return domain.Session{}, errors.New("provider down")
	}
	return p.Provider.SignIn(ctx, email, password)
}

type env struct {
	store      store.Store
	provider   *flakyProvider
	dispatcher *recordingDispatcher
	invites    *service.InvitationService
	validator  *service.ValidatorService
	migrator   *service.MigratorService
}

func newEnv(t *testing.T, tokenTTL time.Duration, providerOpts ...local.Option) *env {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSigner("onboard-test", 0)
	require.NoError(t, err)

	provider := &flakyProvider{Provider: local.New(st, signer, providerOpts...)}
	dispatcher := &recordingDispatcher{}

	return &env{
		store:      st,
		provider:   provider,
		dispatcher: dispatcher,
		invites:    service.NewInvitationService(st, service.NewTokenIssuer(tokenTTL), dispatcher, baseURL),
		validator:  service.NewValidatorService(st),
		migrator:   service.NewMigratorService(st, provider),
	}
}

func (e *env) createTutor(t *testing.T, email string, rate float64) (service.CreateInvitationResult, string) {
	t.Helper()

	res, err := e.invites.Create(t.Context(), service.CreateInvitationInput{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      email,
		Role:       domain.RoleTutor,
		HourlyRate: &rate,
	})
	require.NoError(t, err)
	return res, tokenFromLink(t, e.dispatcher.lastLink(t))
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}
