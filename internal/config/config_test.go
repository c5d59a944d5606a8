package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := NewConfig(nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Nil(t, cfg)
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := NewConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.RequestTimeout)
	assert.Equal(t, 6, cfg.HistoryWindow)
	assert.Equal(t, "conversation", cfg.DefaultMode)
	assert.Equal(t, "intermediate", cfg.DefaultLevel)
	assert.Equal(t, "127.0.0.1:8501", cfg.BindAddr)
}

func TestNewConfigEnvAndFlags(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("HISTORY_WINDOW", "4")

	cfg, err := NewConfig([]string{"-bind-addr", "0.0.0.0:9000", "-default-level", "Advanced"})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 4, cfg.HistoryWindow)
	assert.Equal(t, "0.0.0.0:9000", cfg.BindAddr)
	assert.Equal(t, "advanced", cfg.DefaultLevel)
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := Defaults()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.DefaultMode = "poetry"

	require.Error(t, cfg.Validate())
}

func TestHistoryWindowBounded(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	for _, v := range []string{"7", "20", "3", "0"} {
		t.Setenv("HISTORY_WINDOW", v)
		_, err := NewConfig(nil)
		require.Error(t, err, "HISTORY_WINDOW=%s", v)
	}

	_, err := NewConfig([]string{"-history-window", "8"})
	require.Error(t, err)

	t.Setenv("HISTORY_WINDOW", "2")
	cfg, err := NewConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.HistoryWindow)
}

func TestValidateStubWithoutKey(t *testing.T) {
	cfg := Defaults()
	cfg.StubAI = true

	require.NoError(t, cfg.Validate())
}
