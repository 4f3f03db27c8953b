package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 2.0, cfg.Distance)
	assert.Equal(t, 90.0, cfg.RotationDeg)
	assert.Equal(t, "cubic", cfg.Interpolation)
	assert.Equal(t, "constant", cfg.Border)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, DefaultMapCacheSize, cfg.MapCacheSize)
	assert.Equal(t, "png", cfg.OutputFormat)
	assert.InDelta(t, math.Pi/2, cfg.RotationRadians(), 1e-12)
}

func TestLoadConfig(t *testing.T) {
	t.Run("Partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"distance": 3.5, "border": "wrap"}`), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 3.5, cfg.Distance)
		assert.Equal(t, "wrap", cfg.Border)
		assert.Equal(t, 90.0, cfg.RotationDeg)
		assert.Equal(t, "cubic", cfg.Interpolation)
	})

	t.Run("Cleared values fall back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"distance": 0, "output_dir": "", "rotation_deg": 0}`), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultDistance, cfg.Distance)
		assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
		// zero is a valid rotation
		assert.Equal(t, 0.0, cfg.RotationDeg)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"distance": `), 0644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Distance = 1.25
	cfg.FitWidth, cfg.FitHeight = 640, 480
	cfg.ParamsDir = "/srv/params"

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetFilename(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	name, err := GetFilename()
	require.NoError(t, err)
	assert.Equal(t, ConfigFileName, filepath.Base(name))
	assert.Equal(t, ".pano", filepath.Base(filepath.Dir(name)))
	assert.Equal(t, "pano.log", LogFileName())
}
