package scaffolder_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/berth-dev/berth/pkg/io/scaffolder"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	exitCode := m.Run()

	_, err := snaps.Clean(m, snaps.CleanOpts{Sort: true})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to clean snapshots: " + err.Error() + "\n")
	}

	os.Exit(exitCode)
}

func TestDefaultConfigYAML(t *testing.T) {
	t.Parallel()

	content, err := scaffolder.DefaultConfigYAML()

	require.NoError(t, err)
	snaps.MatchSnapshot(t, content)
}

func TestScaffold_WritesDefaultConfig(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	path := filepath.Join(t.TempDir(), "berth.yaml")

	err := scaffolder.NewScaffolder(&out).Scaffold(path, false)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), "kind: Distribution")
	assert.Contains(t, string(written), "cert-manager")
	assert.Contains(t, out.String(), "generated")
}

func TestScaffold_KeepsExistingFileWithoutForce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "berth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("custom: true\n"), 0o600))

	err := scaffolder.NewScaffolder(&bytes.Buffer{}).Scaffold(path, false)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom: true\n", string(written))
}
