package license_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/berth-dev/berth/pkg/client/license"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCredentials_ReturnsCredentials(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/licenses/lic-42/registry-credentials", r.URL.Path)
		assert.Equal(t, "token-abc", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(
			`{"registry":"proxy.berth.dev","username":"robot$lic-42","password":"s3cret"}`,
		))
	}))
	defer server.Close()

	client := license.NewClient(server.URL, "token-abc")

	credentials, err := client.RegistryCredentials(t.Context(), "lic-42")
	require.NoError(t, err)
	assert.Equal(t, "proxy.berth.dev", credentials.Registry)
	assert.Equal(t, "robot$lic-42", credentials.Username)
	assert.Equal(t, "s3cret", credentials.Password)
}

func TestRegistryCredentials_EmptyLicenseID(t *testing.T) {
	t.Parallel()

	client := license.NewClient("http://unused", "token")

	_, err := client.RegistryCredentials(t.Context(), "")
	require.ErrorIs(t, err, license.ErrLicenseIDEmpty)
}

func TestRegistryCredentials_RejectedLicenseFailsImmediately(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "license expired", http.StatusForbidden)
	}))
	defer server.Close()

	client := license.NewClient(server.URL, "token")

	_, err := client.RegistryCredentials(t.Context(), "lic-42")
	require.ErrorIs(t, err, license.ErrLicenseRejected)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistryCredentials_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "bad gateway", http.StatusBadGateway)

			return
		}

		_, _ = w.Write([]byte(`{"registry":"proxy.berth.dev","username":"u","password":"p"}`))
	}))
	defer server.Close()

	client := license.NewClient(server.URL, "token",
		license.WithRetryPolicy(time.Second, 10*time.Millisecond))

	credentials, err := client.RegistryCredentials(t.Context(), "lic-42")
	require.NoError(t, err)
	assert.Equal(t, "proxy.berth.dev", credentials.Registry)
	assert.Equal(t, int32(2), calls.Load())
}
