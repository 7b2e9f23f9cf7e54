// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/riskscope/internal/modules/panel"
	"github.com/aristath/riskscope/internal/modules/risk"
	"github.com/aristath/riskscope/internal/utils"
)

// Price source selectors.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
	SourceS3     = "s3"
)

// S3Config holds the object-store source settings.
type S3Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Config holds application configuration.
type Config struct {
	LogLevel  string
	LogPretty bool

	Source  string // csv | sqlite | s3
	CSVPath string
	DBPath  string
	S3      S3Config

	Asset         string // target asset for the Monte Carlo estimators
	PortfolioSize int
	NumSims       int
	Seed          uint64

	VaRPortfolio  []string // empty disables the VaR block
	VaRStart      time.Time
	VaREnd        time.Time
	VaRConfidence float64

	RollingWindow int

	ReportPath   string // empty = log only
	ReportFormat string // json | msgpack
	ChartPath    string // empty = no chart

	Schedule string // cron expression; empty = run once
}

// Load reads configuration from the environment, after loading a .env
// file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:  getEnv("RISK_LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("RISK_LOG_PRETTY", true),
		Source:    getEnv("RISK_SOURCE", SourceCSV),
		CSVPath:   getEnv("RISK_CSV_PATH", "prices.csv"),
		DBPath:    getEnv("RISK_DB_PATH", "data/prices.db"),
		S3: S3Config{
			Bucket:    getEnv("RISK_S3_BUCKET", ""),
			Key:       getEnv("RISK_S3_KEY", ""),
			Region:    getEnv("RISK_S3_REGION", "us-east-1"),
			Endpoint:  getEnv("RISK_S3_ENDPOINT", ""),
			AccessKey: getEnv("RISK_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("RISK_S3_SECRET_KEY", ""),
		},
		Asset:         getEnv("RISK_ASSET", ""),
		PortfolioSize: getEnvAsInt("RISK_PORTFOLIO_SIZE", 5),
		NumSims:       getEnvAsInt("RISK_NUM_SIMS", 2000),
		Seed:          getEnvAsUint64("RISK_SEED", risk.DefaultSeed),
		VaRPortfolio:  getEnvAsSlice("RISK_VAR_PORTFOLIO"),
		VaRConfidence: getEnvAsFloat("RISK_VAR_CONFIDENCE", risk.DefaultConfidence),
		RollingWindow: getEnvAsInt("RISK_ROLLING_WINDOW", 20),
		ReportPath:    getEnv("RISK_REPORT_PATH", ""),
		ReportFormat:  getEnv("RISK_REPORT_FORMAT", "json"),
		ChartPath:     getEnv("RISK_CHART_PATH", ""),
		Schedule:      getEnv("RISK_SCHEDULE", ""),
	}

	var err error
	if cfg.VaRStart, err = getEnvAsDate("RISK_VAR_START"); err != nil {
		return nil, err
	}
	if cfg.VaREnd, err = getEnvAsDate("RISK_VAR_END"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// VaREnabled reports whether a VaR block is configured.
func (c *Config) VaREnabled() bool {
	return len(c.VaRPortfolio) > 0
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.CSVPath == "" {
			return fmt.Errorf("RISK_CSV_PATH is required for the csv source")
		}
	case SourceSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("RISK_DB_PATH is required for the sqlite source")
		}
	case SourceS3:
		if c.S3.Bucket == "" || c.S3.Key == "" {
			return fmt.Errorf("RISK_S3_BUCKET and RISK_S3_KEY are required for the s3 source")
		}
	default:
		return fmt.Errorf("unknown RISK_SOURCE %q (want csv, sqlite, or s3)", c.Source)
	}

	if c.Asset == "" {
		return fmt.Errorf("RISK_ASSET is required")
	}
	if c.PortfolioSize < 1 {
		return fmt.Errorf("RISK_PORTFOLIO_SIZE must be >= 1, got %d", c.PortfolioSize)
	}
	if c.NumSims < 1 {
		return fmt.Errorf("RISK_NUM_SIMS must be >= 1, got %d", c.NumSims)
	}
	if c.VaRConfidence <= 0 || c.VaRConfidence >= 1 {
		return fmt.Errorf("RISK_VAR_CONFIDENCE must be in (0, 1), got %g", c.VaRConfidence)
	}
	if c.RollingWindow < 2 {
		return fmt.Errorf("RISK_ROLLING_WINDOW must be >= 2, got %d", c.RollingWindow)
	}
	if c.ReportFormat != "json" && c.ReportFormat != "msgpack" {
		return fmt.Errorf("RISK_REPORT_FORMAT must be json or msgpack, got %q", c.ReportFormat)
	}

	if c.VaREnabled() {
		if c.VaRStart.IsZero() || c.VaREnd.IsZero() {
			return fmt.Errorf("RISK_VAR_START and RISK_VAR_END are required when RISK_VAR_PORTFOLIO is set")
		}
		if c.VaREnd.Before(c.VaRStart) {
			return fmt.Errorf("RISK_VAR_START must not be after RISK_VAR_END")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintVal, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsSlice parses a comma-separated value into trimmed entries.
func getEnvAsSlice(key string) []string {
	return utils.ParseCSV(os.Getenv(key))
}

// getEnvAsDate parses a YYYY-MM-DD value. Unset keys yield a zero time;
// malformed values are an error rather than a silent fallback.
func getEnvAsDate(key string) (time.Time, error) {
	value := os.Getenv(key)
	if value == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(panel.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: want %s", key, value, panel.DateLayout)
	}
	return t, nil
}
