// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Rewards   RewardsConfig   `mapstructure:"rewards"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- External Provider Config ---

// ProvidersConfig holds settings for the two footprint-estimation providers.
type ProvidersConfig struct {
	CarbonLedger struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"carbonledger"`

	AIEstimate struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"ai_estimate"`

	// QualityThreshold rejects primary results whose data-quality value
	// (1 best .. 3 worst) is strictly above it.
	QualityThreshold float64 `mapstructure:"quality_threshold"`
}

// --- Scoring Config ---

// FactorWeights are the fixed linear-combination weights of the six sub-scores.
// They must sum to 1.0.
type FactorWeights struct {
	Carbon    float64 `mapstructure:"carbon"`
	Water     float64 `mapstructure:"water"`
	Energy    float64 `mapstructure:"energy"`
	Transport float64 `mapstructure:"transport"`
	EndOfLife float64 `mapstructure:"end_of_life"`
	Packaging float64 `mapstructure:"packaging"`
}

// Sum returns the total of all factor weights.
func (w FactorWeights) Sum() float64 {
	return w.Carbon + w.Water + w.Energy + w.Transport + w.EndOfLife + w.Packaging
}

// GradeBand maps a minimum overall score to a letter grade. Bands are
// evaluated highest-first; the final band is the catch-all.
type GradeBand struct {
	Grade string  `mapstructure:"grade"`
	Min   float64 `mapstructure:"min"`
}

type ScoringConfig struct {
	Weights    FactorWeights `mapstructure:"weights"`
	GradeBands []GradeBand   `mapstructure:"grade_bands"`
	// FavorableGrades count toward the reward account's favorable tally.
	FavorableGrades []string `mapstructure:"favorable_grades"`
}

// --- Rewards Config ---

type RewardsConfig struct {
	// Deltas maps a grade to the signed value change applied per product.
	Deltas map[string]int `mapstructure:"deltas"`
	// StartValue is the neutral value a new account begins at.
	StartValue int `mapstructure:"start_value"`
	// HistoryLimit caps retained history entries (0 = unlimited).
	HistoryLimit int `mapstructure:"history_limit"`
}

// --- Cache Config ---

type CacheConfig struct {
	// TTL for the Redis hot layer, in seconds.
	TTLSeconds int `mapstructure:"ttl_seconds"`
	// BenchmarkPath optionally points at a JSON benchmark registry that
	// overrides the built-in category benchmarks.
	BenchmarkPath string `mapstructure:"benchmark_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
