package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/Pano/config"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"1280x720", 1280, 720, false},
		{"64X32", 64, 32, false},
		{"0x10", 0, 0, true},
		{"wide", 0, 0, true},
		{"10x-3", 0, 0, true},
	}

	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.w, w)
		assert.Equal(t, tt.h, h)
	}
}

func TestParseArgsFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	cfg := config.Default()
	cfg.Distance = 3.5
	cfg.Interpolation = "linear"
	require.NoError(t, cfg.Save(cfgPath))

	opts, err := parseArgs([]string{"-config", cfgPath, "-rot", "0", "-format", "jpg", "-fit", "320x200", "a.png", "b.png"})
	require.NoError(t, err)

	assert.Equal(t, 3.5, opts.cfg.Distance)
	assert.Equal(t, "linear", opts.cfg.Interpolation)
	assert.Equal(t, 0.0, opts.cfg.RotationDeg)
	assert.Equal(t, "jpg", opts.cfg.OutputFormat)
	assert.Equal(t, 320, opts.cfg.FitWidth)
	assert.Equal(t, 200, opts.cfg.FitHeight)
	assert.Equal(t, []string{"a.png", "b.png"}, opts.inputs)
}

func TestParseArgsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{}`), 0644))

	opts, err := parseArgs([]string{"-config", cfgPath})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDistance, opts.cfg.Distance)
	assert.Equal(t, config.DefaultRotationDeg, opts.cfg.RotationDeg)
	assert.Equal(t, []string{defaultInput}, opts.inputs)

	_, err = parseArgs([]string{"-config", cfgPath, "-fit", "big"})
	assert.Error(t, err)
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	frames := filepath.Join(dir, "frames")
	require.NoError(t, os.Mkdir(frames, 0755))
	for _, name := range []string{"b.png", "a.jpg", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(frames, name), []byte("x"), 0644))
	}
	single := filepath.Join(dir, "pano.png")
	require.NoError(t, os.WriteFile(single, []byte("x"), 0644))

	paths, err := expandInputs([]string{single, frames})
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(frames, "a.jpg"),
		filepath.Join(frames, "b.png"),
	}, paths)

	_, err = expandInputs([]string{filepath.Join(dir, "missing.png")})
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0755))
	_, err = expandInputs([]string{empty})
	assert.Error(t, err)
}
