package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeroread/aero/internal/shred"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 50, cfg.Shred.EPUBMinWords)
	assert.Equal(t, 10, cfg.Shred.PDFMinWords)
	assert.False(t, cfg.Shred.SpineOrder)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[reader]
wpm = 450

[shred]
spine_order = true
pdf_min_words = 5

[log]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 450, cfg.Reader.WPM)
	assert.True(t, cfg.Shred.SpineOrder)
	assert.Equal(t, 5, cfg.Shred.PDFMinWords)
	assert.Equal(t, 50, cfg.Shred.EPUBMinWords, "unset keys keep their default")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad toml", "[reader\nwpm = 1", "parse config"},
		{"unknown key", "[reader]\nspeed = 300", "parse config"},
		{"wpm too high", "[reader]\nwpm = 5000", "reader.wpm"},
		{"negative threshold", "[shred]\nepub_min_words = -1", "shred.epub_min_words"},
		{"bad level", "[log]\nlevel = \"loud\"", "log.level"},
		{"bad format", "[log]\nformat = \"xml\"", "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "aeroread", "config.toml"), DefaultPath())
}

func TestShredOptions(t *testing.T) {
	cfg := Default()
	ex := shred.New(cfg.ShredOptions()...)
	_, err := ex.Extract([]byte("not an epub"), shred.FormatEPUB)
	assert.ErrorIs(t, err, shred.ErrMalformedContainer)
	assert.Len(t, cfg.ShredOptions(), 4)
}
