package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlay_PrefersOpenBuffer(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "Token.sol")
	require.NoError(t, os.WriteFile(path, []byte("on disk"), 0644))

	overlay := NewOverlay(nil)
	overlay.Set(path, "in editor")

	content, err := overlay.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "in editor", string(content))
}

func TestOverlay_FallsBackAfterDelete(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "Token.sol")
	require.NoError(t, os.WriteFile(path, []byte("on disk"), 0644))

	overlay := NewOverlay(nil)
	overlay.Set(path, "in editor")
	overlay.Delete(path)

	content, err := overlay.Reader()(path)
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(content))

	_, ok := overlay.Get(path)
	assert.False(t, ok)
}

func TestOverlay_MissingFileReturnsError(t *testing.T) {
	overlay := NewOverlay(nil)

	_, err := overlay.Read(filepath.Join(t.TempDir(), "Missing.sol"))
	assert.Error(t, err)
}

func TestOverlay_ReadsThroughBaseFilesystem(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/project/B.sol", []byte("b"), 0o644))
	overlay := NewOverlay(base)
	overlay.Set("/project/contracts/../contracts/A.sol", "a")

	content, err := overlay.Read("/project/contracts/A.sol")
	require.NoError(t, err)
	assert.Equal(t, "a", string(content))

	content, err = overlay.Read("/project/B.sol")
	require.NoError(t, err)
	assert.Equal(t, "b", string(content))
}

func TestOverlay_DoesNotWriteThroughToBase(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/project/A.sol", []byte("saved"), 0o644))
	overlay := NewOverlay(base)

	overlay.Set("/project/A.sol", "unsaved")
	overlay.Delete("/project/A.sol")

	content, err := afero.ReadFile(base, "/project/A.sol")
	require.NoError(t, err)
	assert.Equal(t, "saved", string(content))
}
