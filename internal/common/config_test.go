package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finscreen/internal/models"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("FINSCREEN_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_EODHDKeyEnvOverride(t *testing.T) {
	t.Setenv("EODHD_API_KEY", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, "from-env", cfg.Clients.EODHD.APIKey)
}

func TestConfig_SentimentProviderOverride(t *testing.T) {
	t.Setenv("FINSCREEN_SENTIMENT_PROVIDER", "NONE")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, "none", cfg.Sentiment.Provider)
}

func TestConfig_ValidateRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, []string{"clients.eodhd.api_key", "clients.gemini.api_key"}, cfg.ValidateRequired())

	cfg.Clients.EODHD.APIKey = "k"
	cfg.Sentiment.Provider = "none"
	assert.Empty(t, cfg.ValidateRequired())
}

func TestConfig_Timeouts(t *testing.T) {
	e := EODHDConfig{Timeout: "bogus"}
	assert.Equal(t, 30*1e9, float64(e.GetTimeout()))

	s := ScrapeConfig{Timeout: "5s"}
	assert.Equal(t, "5s", s.GetTimeout().String())
}

func TestLoadConfig_FileAndCriteria(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finscreen.toml")
	content := `
environment = "production"

[server]
port = 4242

[clients.eodhd]
api_key = "toml-key"

[screening]
history_period = "6mo"

[screening.criteria]
ROE = 0.2
"Debt/Equity" = 0.8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("EODHD_API_KEY", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 4242, cfg.Server.Port)
	assert.Equal(t, "toml-key", cfg.Clients.EODHD.APIKey)
	assert.Equal(t, "6mo", cfg.Screening.HistoryPeriod)
	assert.Equal(t, models.Criteria{
		{Metric: models.MetricROE, Threshold: 0.2},
		{Metric: models.MetricDebtToEquity, Threshold: 0.8},
	}, cfg.Screening.DefaultCriteria())
}

func TestLoadConfig_DotEnvBesideConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FINSCREEN_TEST_DOTENV_KEY=dotenv-value\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FINSCREEN_TEST_DOTENV_KEY") })

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "dotenv-value", os.Getenv("FINSCREEN_TEST_DOTENV_KEY"))
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport ="), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestScreeningConfig_DefaultCriteriaFallback(t *testing.T) {
	s := ScreeningConfig{}
	assert.Equal(t, models.DefaultCriteria(), s.DefaultCriteria())
}
