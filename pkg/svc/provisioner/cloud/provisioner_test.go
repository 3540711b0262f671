package cloudprovisioner_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/svc/provisioner"
	cloudprovisioner "github.com/berth-dev/berth/pkg/svc/provisioner/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// fakePlatform is an in-memory environment API. Environments become running
// after a configurable number of status polls.
type fakePlatform struct {
	mu           sync.Mutex
	environments map[string]int
	pollsToRun   int
	failAll      bool
}

func newFakePlatform(pollsToRun int) *fakePlatform {
	return &fakePlatform{
		environments: make(map[string]int),
		pollsToRun:   pollsToRun,
	}
}

func (f *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/environments", f.create)
	mux.HandleFunc("GET /v1/environments/{name}", f.status)
	mux.HandleFunc("GET /v1/environments/{name}/kubeconfig", f.kubeconfig)
	mux.HandleFunc("DELETE /v1/environments/{name}", f.delete)

	return mux
}

func (f *fakePlatform) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}

	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.environments[body.Name] = 0
	f.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
}

func (f *fakePlatform) status(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	f.mu.Lock()
	polls, ok := f.environments[name]
	if ok {
		f.environments[name] = polls + 1
	}
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)

		return
	}

	status := "provisioning"

	switch {
	case f.failAll:
		status = "failed"
	case polls >= f.pollsToRun:
		status = "running"
	}

	_ = json.NewEncoder(w).Encode(map[string]string{
		"name":     name,
		"status":   status,
		"endpoint": "https://" + name + ".env.berth.dev",
	})
}

func (f *fakePlatform) kubeconfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	f.mu.Lock()
	_, ok := f.environments[name]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)

		return
	}

	_, _ = w.Write([]byte("apiVersion: v1\nkind: Config\n"))
}

func (f *fakePlatform) delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	f.mu.Lock()
	_, ok := f.environments[name]
	delete(f.environments, name)
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func newProvisioner(t *testing.T, platform *fakePlatform) *cloudprovisioner.Provisioner {
	t.Helper()

	server := httptest.NewServer(platform.handler())
	t.Cleanup(server.Close)

	env := v1alpha1.Environment{
		Provider:     v1alpha1.ProviderCloud,
		Distribution: "k3s",
		Version:      "v1.32.0",
		TTL:          metav1.Duration{Duration: 4 * time.Hour},
	}

	return cloudprovisioner.NewProvisioner(
		server.URL, "token", env,
		cloudprovisioner.WithPollPolicy(2*time.Second, 10*time.Millisecond),
	)
}

func TestCreate_WaitsUntilRunning(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(2)
	prov := newProvisioner(t, platform)

	err := prov.Create(t.Context(), "env-1")

	require.NoError(t, err)
}

func TestCreate_FailedEnvironment(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(0)
	platform.failAll = true
	prov := newProvisioner(t, platform)

	err := prov.Create(t.Context(), "env-1")

	require.ErrorIs(t, err, cloudprovisioner.ErrEnvironmentFailed)
}

func TestExists(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(0)
	prov := newProvisioner(t, platform)
	require.NoError(t, prov.Create(t.Context(), "env-1"))

	exists, err := prov.Exists(t.Context(), "env-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = prov.Exists(t.Context(), "env-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestKubeconfig(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(0)
	prov := newProvisioner(t, platform)
	require.NoError(t, prov.Create(t.Context(), "env-1"))

	kubeconfig, err := prov.Kubeconfig(t.Context(), "env-1")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(kubeconfig, "apiVersion: v1"))
}

func TestKubeconfig_NotFound(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(0)
	prov := newProvisioner(t, platform)

	_, err := prov.Kubeconfig(t.Context(), "missing")

	require.ErrorIs(t, err, provisioner.ErrEnvironmentNotFound)
}

func TestEndpoint(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(0)
	prov := newProvisioner(t, platform)
	require.NoError(t, prov.Create(t.Context(), "env-1"))

	endpoint, err := prov.Endpoint(t.Context(), "env-1")

	require.NoError(t, err)
	assert.Equal(t, "https://env-1.env.berth.dev", endpoint)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform(0)
	prov := newProvisioner(t, platform)
	require.NoError(t, prov.Create(t.Context(), "env-1"))

	require.NoError(t, prov.Delete(t.Context(), "env-1"))

	err := prov.Delete(t.Context(), "env-1")
	require.ErrorIs(t, err, provisioner.ErrEnvironmentNotFound)
}
