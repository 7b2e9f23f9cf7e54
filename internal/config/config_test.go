package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RISK_ASSET", "AAPL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, SourceCSV, cfg.Source)
	assert.Equal(t, "prices.csv", cfg.CSVPath)
	assert.Equal(t, "AAPL", cfg.Asset)
	assert.Equal(t, 5, cfg.PortfolioSize)
	assert.Equal(t, 2000, cfg.NumSims)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Empty(t, cfg.VaRPortfolio)
	assert.False(t, cfg.VaREnabled())
	assert.InDelta(t, 0.95, cfg.VaRConfidence, 1e-12)
	assert.Equal(t, 20, cfg.RollingWindow)
	assert.Equal(t, "json", cfg.ReportFormat)
	assert.Empty(t, cfg.Schedule)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RISK_ASSET", "MSFT")
	t.Setenv("RISK_SOURCE", "sqlite")
	t.Setenv("RISK_DB_PATH", "/tmp/prices.db")
	t.Setenv("RISK_PORTFOLIO_SIZE", "8")
	t.Setenv("RISK_NUM_SIMS", "500")
	t.Setenv("RISK_SEED", "7")
	t.Setenv("RISK_VAR_PORTFOLIO", "AAA, BBB,CCC,")
	t.Setenv("RISK_VAR_START", "2024-01-02")
	t.Setenv("RISK_VAR_END", "2024-06-28")
	t.Setenv("RISK_VAR_CONFIDENCE", "0.99")
	t.Setenv("RISK_REPORT_FORMAT", "msgpack")
	t.Setenv("RISK_SCHEDULE", "@every 12h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Source)
	assert.Equal(t, "/tmp/prices.db", cfg.DBPath)
	assert.Equal(t, 8, cfg.PortfolioSize)
	assert.Equal(t, 500, cfg.NumSims)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, cfg.VaRPortfolio)
	assert.True(t, cfg.VaREnabled())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), cfg.VaRStart)
	assert.InDelta(t, 0.99, cfg.VaRConfidence, 1e-12)
	assert.Equal(t, "msgpack", cfg.ReportFormat)
	assert.Equal(t, "@every 12h", cfg.Schedule)
}

func TestLoad_MissingAsset(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RISK_ASSET")
}

func TestLoad_BadDate(t *testing.T) {
	t.Setenv("RISK_ASSET", "AAPL")
	t.Setenv("RISK_VAR_START", "01/02/2024")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RISK_VAR_START")
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		return &Config{
			Source:        SourceCSV,
			CSVPath:       "prices.csv",
			Asset:         "AAPL",
			PortfolioSize: 5,
			NumSims:       2000,
			VaRConfidence: 0.95,
			RollingWindow: 20,
			ReportFormat:  "json",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown source", func(c *Config) { c.Source = "ftp" }, "RISK_SOURCE"},
		{"zero portfolio size", func(c *Config) { c.PortfolioSize = 0 }, "RISK_PORTFOLIO_SIZE"},
		{"zero sims", func(c *Config) { c.NumSims = 0 }, "RISK_NUM_SIMS"},
		{"confidence too high", func(c *Config) { c.VaRConfidence = 1 }, "RISK_VAR_CONFIDENCE"},
		{"confidence too low", func(c *Config) { c.VaRConfidence = 0 }, "RISK_VAR_CONFIDENCE"},
		{"short rolling window", func(c *Config) { c.RollingWindow = 1 }, "RISK_ROLLING_WINDOW"},
		{"bad report format", func(c *Config) { c.ReportFormat = "yaml" }, "RISK_REPORT_FORMAT"},
		{"s3 without bucket", func(c *Config) { c.Source = SourceS3 }, "RISK_S3_BUCKET"},
		{
			"var portfolio without window",
			func(c *Config) { c.VaRPortfolio = []string{"AAA"} },
			"RISK_VAR_START",
		},
		{
			"var window inverted",
			func(c *Config) {
				c.VaRPortfolio = []string{"AAA"}
				c.VaRStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
				c.VaREnd = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			},
			"RISK_VAR_START",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.NoError(t, base().Validate())
}
