package onboard_test

import (
	"context"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tutorden/platform/internal/onboard/app"
	"github.com/tutorden/platform/internal/onboard/notify"
	"github.com/tutorden/platform/pkg/onboardsdk"
)

/*
 * End-to-end tests exercising the full HTTP surface against a real
 * application instance: wired router, SQLite storage, local identity
 * provider. Only the email dispatcher is replaced, with a recorder the
 * tests pull invitation links out of.
 */

const (
	adminToken   = "test-admin-token-12345"
	testPassword = "correct horse battery staple"
)

// recordingDispatcher captures outbound messages so tests can extract
// the redemption link the way a real recipient would.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (d *recordingDispatcher) Send(_ context.Context, msg notify.Message) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return "msg-e2e", nil
}

func (d *recordingDispatcher) lastToken(t *testing.T) string {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.sent, "no invitation email was dispatched")

	link := d.sent[len(d.sent)-1].Variables["link"]
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

type testEnv struct {
	client     *onboardsdk.Client
	serverURL  string
	dispatcher *recordingDispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dispatcher := &recordingDispatcher{}

	cfg := app.LoadConfig()
	cfg.AdminToken = adminToken
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "onboard.db")
	cfg.BaseURL = "https://app.tutorden.example"
	cfg.LogLevel = "error"
	cfg.HousekeepingInterval = time.Hour

	application, err := app.New(cfg, app.WithDispatcher(dispatcher))
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	client := onboardsdk.NewClient(srv.URL)
	client.AdminToken = adminToken

	return &testEnv{
		client:     client,
		serverURL:  srv.URL,
		dispatcher: dispatcher,
	}
}

func (e *testEnv) invite(t *testing.T, email string, rate float64) (onboardsdk.CreateInvitationResponse, string) {
	t.Helper()

	res, err := e.client.CreateInvitation(t.Context(), onboardsdk.CreateInvitationRequest{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      email,
		Role:       "tutor",
		HourlyRate: &rate,
	})
	require.NoError(t, err)
	return res, e.dispatcher.lastToken(t)
}
