package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	conf, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test-key", conf.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-flash", conf.LLM.Model)
	assert.Equal(t, "gemini-3-pro-preview", conf.LLM.RiskModel)
	assert.Equal(t, 120*time.Second, conf.LLM.Timeout)
	assert.Equal(t, 20, conf.Agent.HistoryLimit)
	assert.False(t, conf.Agent.APAAsSuggestion)
	assert.Equal(t, int64(20<<20), conf.Attachments.MaxBytes)
	assert.Equal(t, []string{"application/pdf", "image/*"}, conf.Attachments.AllowedTypes)
}

func TestLoad_FileValues(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	path := writeConfig(t, `
server:
  port: "9000"
llm:
  api_key: file-key
  model: gemini-custom
  timeout: 30s
agent:
  history_limit: 5
  apa_as_suggestion: true
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", conf.Server.Port)
	assert.Equal(t, "file-key", conf.LLM.APIKey)
	assert.Equal(t, "gemini-custom", conf.LLM.Model)
	assert.Equal(t, 30*time.Second, conf.LLM.Timeout)
	assert.Equal(t, 5, conf.Agent.HistoryLimit)
	assert.True(t, conf.Agent.APAAsSuggestion)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SCHOLAR_LLM_MODEL", "gemini-env")
	t.Setenv("GEMINI_API_KEY", "env-key")
	path := writeConfig(t, "llm:\n  model: gemini-file\n")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-env", conf.LLM.Model)
	assert.Equal(t, "env-key", conf.LLM.APIKey)
}

func TestLoad_MissingAPIKeyFailsFast(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SCHOLAR_LLM_API_KEY", "")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_UnknownServerMode(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	path := writeConfig(t, "server:\n  mode: prod\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "server.mode")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			LLM:         LLMConfig{APIKey: "k", Model: "m", RiskModel: "r", Timeout: time.Second},
			Attachments: AttachmentsConfig{MaxBytes: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"blank key", func(c *Config) { c.LLM.APIKey = "  " }, true},
		{"no risk model", func(c *Config) { c.LLM.RiskModel = "" }, true},
		{"zero timeout", func(c *Config) { c.LLM.Timeout = 0 }, true},
		{"negative history", func(c *Config) { c.Agent.HistoryLimit = -1 }, true},
		{"zero max bytes", func(c *Config) { c.Attachments.MaxBytes = 0 }, true},
		{"release mode", func(c *Config) { c.Server.Mode = "release" }, false},
		{"unknown mode", func(c *Config) { c.Server.Mode = "production" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
