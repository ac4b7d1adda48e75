package onboard_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tutorden/platform/pkg/onboardsdk"
)

func TestLivez(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	health, err := e.client.Livez(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.NotEmpty(t, health.Version)
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	resp, err := http.Get(e.serverURL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health onboardsdk.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
}
