package cmd_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBerthConfig(t *testing.T, content string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "berth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Chdir(dir)
}

func newNetflowServer(t *testing.T, domains string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(
		"GET /v1/environments/{name}/network-report",
		func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "berth-stable", request.PathValue("name"))
			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"domains":` + domains + `}`))
		},
	)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestNetcheckCmd_PassesWhenTrafficIsAllowlisted(t *testing.T) {
	writeBerthConfig(t, `kind: Distribution
apiVersion: berth.dev/v1alpha1
spec:
  channel: stable
  charts:
    - name: harbor
      namespace: registry
  network:
    allowlist:
      - proxy.berth.dev
      - "*.env.berth.dev"
`)

	server := newNetflowServer(t, `["proxy.berth.dev","env-1.env.berth.dev"]`)

	output, err := executeCommand(t, "netcheck", "--netflow-url", server.URL)

	require.NoError(t, err)
	assert.Contains(t, output, "network traffic within allowlist")
	assert.Contains(t, output, "2 observed domains")
}

func TestNetcheckCmd_FailsOnDisallowedDomain(t *testing.T) {
	writeBerthConfig(t, `kind: Distribution
apiVersion: berth.dev/v1alpha1
spec:
  channel: stable
  charts:
    - name: harbor
      namespace: registry
  network:
    allowlist:
      - proxy.berth.dev
`)

	server := newNetflowServer(t, `["proxy.berth.dev","evil.example.com"]`)

	_, err := executeCommand(t, "netcheck", "--netflow-url", server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the allowlist")
	assert.Contains(t, err.Error(), "evil.example.com")
}

func TestNetcheckCmd_WarnsOnEmptyReport(t *testing.T) {
	writeBerthConfig(t, `kind: Distribution
apiVersion: berth.dev/v1alpha1
spec:
  charts:
    - name: harbor
      namespace: registry
`)

	server := newNetflowServer(t, `[]`)

	output, err := executeCommand(t, "netcheck", "--netflow-url", server.URL)

	require.NoError(t, err)
	assert.Contains(t, output, "no network traffic observed")
	assert.Contains(t, output, "network check passed")
}

func TestNetcheckCmd_RequiresNetflowURL(t *testing.T) {
	writeBerthConfig(t, `kind: Distribution
apiVersion: berth.dev/v1alpha1
spec:
  charts:
    - name: harbor
      namespace: registry
`)

	_, err := executeCommand(t, "netcheck")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "BERTH_NETFLOW_URL")
}
