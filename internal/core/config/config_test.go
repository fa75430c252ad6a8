package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ASTUTO_API_KEY", "ASTUTO_BASE_URL", "ASTUTO_BOARD_ID",
		"GITHUB_TOKEN", "SOURCE_OWNER", "SOURCE_REPO",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "astuto-sync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg := LoadFromEnv()

	assert.Equal(t, "all", cfg.Source.State)
	assert.Equal(t, 100, cfg.Sync.PageSize)
	assert.Equal(t, 15*time.Second, time.Duration(cfg.Sync.RequestTimeout))
	assert.Equal(t, 3, cfg.Sync.MaxRetries)
	assert.Equal(t, 3, cfg.Sync.MaxRateLimitWaits)
	assert.Equal(t, time.Second, time.Duration(cfg.Sync.CreateDelay))
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadParsesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
source:
  owner: octo
  repo: demo
  state: open
astuto:
  base_url: https://feedback.example.com/
  api_key: secret
  board_id: 7
sync:
  page_size: 50
  request_timeout: 5s
  create_delay: 250ms
  schedule: "@every 1h"
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "octo", cfg.Source.Owner)
	assert.Equal(t, "demo", cfg.Source.Repo)
	assert.Equal(t, "open", cfg.Source.State)
	assert.Equal(t, 7, cfg.Astuto.BoardID)
	assert.Equal(t, 50, cfg.Sync.PageSize)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.Sync.RequestTimeout))
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.Sync.CreateDelay))
	assert.Equal(t, "@every 1h", cfg.Sync.Schedule)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadExpandsEnvInContent(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_BOARD_KEY", "expanded-key")
	path := writeConfig(t, `
source:
  owner: octo
  repo: demo
astuto:
  base_url: https://feedback.example.com
  api_key: ${TEST_BOARD_KEY}
  board_id: 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.Astuto.APIKey)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ASTUTO_API_KEY", "env-key")
	t.Setenv("ASTUTO_BOARD_ID", "12")
	t.Setenv("SOURCE_OWNER", "env-owner")
	path := writeConfig(t, `
source:
  owner: file-owner
  repo: demo
astuto:
  base_url: https://feedback.example.com
  api_key: file-key
  board_id: 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Astuto.APIKey)
	assert.Equal(t, 12, cfg.Astuto.BoardID)
	assert.Equal(t, "env-owner", cfg.Source.Owner)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
sync:
  request_timeout: soon
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		clearEnv(t)
		cfg := LoadFromEnv()
		cfg.Source.Owner = "octo"
		cfg.Source.Repo = "demo"
		cfg.Astuto.BaseURL = "https://feedback.example.com"
		cfg.Astuto.APIKey = "secret"
		cfg.Astuto.BoardID = 1
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("missing repo", func(t *testing.T) {
		cfg := base()
		cfg.Source.Repo = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad state", func(t *testing.T) {
		cfg := base()
		cfg.Source.State = "merged"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := base()
		cfg.Astuto.APIKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing board", func(t *testing.T) {
		cfg := base()
		cfg.Astuto.BoardID = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("page size out of range", func(t *testing.T) {
		cfg := base()
		cfg.Sync.PageSize = 200
		assert.Error(t, cfg.Validate())
	})
}

func TestFindConfigPathExplicitMissing(t *testing.T) {
	assert.Equal(t, "", FindConfigPath(filepath.Join(t.TempDir(), "nope.yaml")))
}
