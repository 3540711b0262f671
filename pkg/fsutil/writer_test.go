package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/berth-dev/berth/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryWriteFile_WritesNewFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "berth.yaml")

	err := fsutil.TryWriteFile("content", path, false)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(written))
}

func TestTryWriteFile_KeepsExistingFileWithoutForce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "berth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	err := fsutil.TryWriteFile("replacement", path, false)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(written))
}

func TestTryWriteFile_OverwritesWithForce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "berth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	err := fsutil.TryWriteFile("replacement", path, true)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replacement", string(written))
}

func TestTryWriteFile_EmptyPath(t *testing.T) {
	t.Parallel()

	err := fsutil.TryWriteFile("content", "", false)

	require.ErrorIs(t, err, fsutil.ErrEmptyOutputPath)
}

func TestExpandHomePath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := fsutil.ExpandHomePath("~/kubeconfig.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "kubeconfig.yaml"), expanded)

	absolute, err := fsutil.ExpandHomePath("/etc/berth/config")
	require.NoError(t, err)
	assert.Equal(t, "/etc/berth/config", absolute)

	relative, err := fsutil.ExpandHomePath("berth.yaml")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(relative))
}
