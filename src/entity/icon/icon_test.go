package icon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app1.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644))

	ic, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ic.MimeType)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, ic.Data)
}

func TestLoadUppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app1.PNG")
	require.NoError(t, os.WriteFile(path, []byte("icon"), 0o644))

	ic, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ic.MimeType)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadIcon)
}

func TestLoadNoExtension(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "iconfile"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoExt)
}
