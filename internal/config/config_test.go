// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "debug: true\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 8318, cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.FastModel)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow())
	assert.Equal(t, 30*time.Second, cfg.DedupWindow())
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL())
	assert.Equal(t, "@every 1m", cfg.Maintenance.SweepSchedule)
}

func TestLoadConfig_OverridesAndRules(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
model:
  fast-model: local-small
  quality-model: local-large
  base-url: http://localhost:11434/v1
rate-limit:
  window-seconds: 120
  max-messages: 10
planner-rules:
  - name: long-factual-upgrade
    condition: 'Intent == "factual" && Complexity >= 4'
    force-tier: quality
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "local-small", cfg.Model.FastModel)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Model.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.RateLimitWindow())
	assert.Equal(t, 10, cfg.RateLimit.MaxMessages)
	require.Len(t, cfg.PlannerRules, 1)
	assert.Equal(t, "quality", cfg.PlannerRules[0].ForceTier)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_RuleValidation(t *testing.T) {
	path := writeConfig(t, `
planner-rules:
  - name: bad-tier
    condition: 'Complexity > 1'
    force-tier: turbo
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tier")
}

func TestConfig_EnvResolution(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token-env: TEST_PEPPER_TG_TOKEN
model:
  api-key-env: TEST_PEPPER_API_KEY
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	t.Setenv("TEST_PEPPER_TG_TOKEN", "tg-secret")
	t.Setenv("TEST_PEPPER_API_KEY", "api-secret")

	assert.Equal(t, "tg-secret", cfg.TelegramToken())
	assert.Equal(t, "api-secret", cfg.ModelAPIKey())
}
