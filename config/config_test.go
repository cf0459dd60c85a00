package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/rq/mask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "565", config.Mask)
	assert.False(t, config.Augment)
	assert.Equal(t, 10, config.Workers)
	assert.Empty(t, config.DB)
	assert.NoError(t, config.Validate())

	m, err := config.ParsedMask()
	require.NoError(t, err)
	assert.Equal(t, mask.Default, m)
}

func TestLoadConfig(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rq.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mask: \"808\"\naugment: true\n"), 0600))

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "808", config.Mask)
		assert.True(t, config.Augment)
		assert.Equal(t, 10, config.Workers)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rq.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mask: [\n"), 0600))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid mask", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rq.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mask: \"555\"\n"), 0600))

		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, mask.ErrInvalidSum))
	})

	t.Run("invalid workers", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rq.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workers: 0\n"), 0600))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rq.yaml")

	config := DefaultConfig()
	config.DB = "/tmp/rq.db"
	config.MaxWidth = 640
	require.NoError(t, SaveConfig(config, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Equal(t, "565", raw["mask"])
	assert.Equal(t, 640, raw["max_width"])

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}
