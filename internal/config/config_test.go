package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Client.APIBase)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "images", cfg.Client.ImageField)
	assert.False(t, cfg.Cloudinary.Enabled())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE", "http://tasks.internal:9090")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("IMAGE_FIELD", "image_url")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_UPLOAD_PRESET", "unsigned")
	t.Setenv("LOG_JSON", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://tasks.internal:9090", cfg.Client.APIBase)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "image_url", cfg.Client.ImageField)
	assert.True(t, cfg.Cloudinary.Enabled())
	assert.True(t, cfg.Log.JSON)
}

func TestLoadDotenvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLOUDINARY_FOLDER=todo-images\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CLOUDINARY_FOLDER") })

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "todo-images", cfg.Cloudinary.Folder)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("IMAGE_FIELD", "photo")
	_, err := Load()
	assert.Error(t, err)
}
