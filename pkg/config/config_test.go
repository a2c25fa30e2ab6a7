package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := GetConfig()
	require.NoError(t, err)
	return cfg
}

func TestConfig(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name: "load from settings.yaml",
			setup: func(t *testing.T) string {
				return writeConfig(t, `
api:
  channel: "klassika"
download:
  retries: 3
output:
  mp3_dir: "/srv/podcasts"
`)
			},
			check: func(t *testing.T) {
				cfg := mustConfig(t)
				assert.Equal(t, "klassika", cfg.API.Channel)
				assert.Equal(t, 3, cfg.Download.Retries)
				assert.Equal(t, "/srv/podcasts", cfg.Output.MP3Dir)
				// untouched keys keep their defaults
				assert.Equal(t, "R2", cfg.Station.Name)
			},
		},
		{
			name: "environment variable override",
			setup: func(t *testing.T) string {
				t.Setenv("R2GET_DOWNLOAD_RETRIES", "9")
				return writeConfig(t, "download:\n  retries: 3\n")
			},
			check: func(t *testing.T) {
				assert.Equal(t, 9, mustConfig(t).Download.Retries)
			},
		},
		{
			name: "missing default config file uses defaults",
			setup: func(t *testing.T) string {
				return ""
			},
			check: func(t *testing.T) {
				cfg := mustConfig(t)
				assert.Equal(t, 5, cfg.Download.Retries)
				assert.Equal(t, ".", cfg.Output.MP4Dir)
				assert.Equal(t, "Europe/Tallinn", cfg.API.Timezone)
				assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
				assert.Equal(t, 30*time.Minute, cfg.Processing.FFmpegTimeout)
			},
		},
		{
			name: "explicit config file must exist",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.yaml")
			},
			wantErr: true,
		},
		{
			name: "zero retries rejected",
			setup: func(t *testing.T) string {
				return writeConfig(t, "download:\n  retries: 0\n")
			},
			wantErr: true,
		},
		{
			name: "unknown timezone rejected",
			setup: func(t *testing.T) string {
				return writeConfig(t, "api:\n  timezone: \"Mars/Olympus\"\n")
			},
			wantErr: true,
		},
		{
			name: "blank base url rejected",
			setup: func(t *testing.T) string {
				return writeConfig(t, "api:\n  base_url: \"  \"\n")
			},
			wantErr: true,
		},
		{
			name: "invalid rate limit corrected",
			setup: func(t *testing.T) string {
				return writeConfig(t, "api:\n  rate_limit: -1\n")
			},
			check: func(t *testing.T) {
				cfg, err := GetConfig()
				require.NoError(t, err)
				assert.Equal(t, float64(5), cfg.API.RateLimit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Reset()
			t.Cleanup(Reset)

			// keep the default path away from any real settings file
			oldDefault := DefaultConfigPath
			DefaultConfigPath = filepath.Join(t.TempDir(), "settings.yaml")
			t.Cleanup(func() { DefaultConfigPath = oldDefault })

			err := Init(tt.setup(t))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestGetConfigUnmarshalsSections(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := writeConfig(t, `
api:
  base_url: "http://127.0.0.1:9999/api"
  preferred_image_width: 640
download:
  quick_test_bytes: 1024
  max_temp_age: 2h
station:
  name: "Raadio 2"
logging:
  format: json
`)
	require.NoError(t, Init(path))

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999/api", cfg.API.BaseURL)
	assert.Equal(t, 640, cfg.API.PreferredImageWidth)
	assert.Equal(t, int64(1024), cfg.Download.QuickTestBytes)
	assert.Equal(t, 2*time.Hour, cfg.Download.MaxTempAge)
	assert.Equal(t, "Raadio 2", cfg.Station.Name)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "Europe/Tallinn", cfg.Location().String())
}

func TestSetOverridesFile(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.NoError(t, Init(writeConfig(t, "output:\n  ogg_dir: /a\n")))
	Set("output.ogg_dir", "/b")
	assert.Equal(t, "/b", mustConfig(t).Output.OggDir)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		API:      APIConfig{BaseURL: DefaultBaseURL, Timezone: "Europe/Tallinn", PreferredImageWidth: 1000},
		Download: DownloadConfig{Retries: 5, QuickTestBytes: 1},
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, float64(5), cfg.API.RateLimit)

	cfg.API.BaseURL = " "
	assert.Error(t, cfg.Validate())

	cfg.API.BaseURL = DefaultBaseURL
	cfg.Download.Retries = 0
	assert.Error(t, cfg.Validate())
}
