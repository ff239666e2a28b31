// internal/common/config/loader.go
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "ecoscore/internal/common/errors"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like CARBONLEDGER_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, e.g. config.production.yaml.
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env in the usual run locations before falling back to
// the system environment.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "scorer-service"
	}
	if cfg.App.MetricsAddr == "" {
		cfg.App.MetricsAddr = ":9100"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 20
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Providers.CarbonLedger.Timeout == 0 {
		cfg.Providers.CarbonLedger.Timeout = 3000
	}
	if cfg.Providers.AIEstimate.Timeout == 0 {
		cfg.Providers.AIEstimate.Timeout = 3000
	}
	if cfg.Providers.QualityThreshold == 0 {
		cfg.Providers.QualityThreshold = 2.5
	}

	if cfg.Scoring.Weights.Sum() == 0 {
		cfg.Scoring.Weights = DefaultFactorWeights()
	}
	if len(cfg.Scoring.GradeBands) == 0 {
		cfg.Scoring.GradeBands = DefaultGradeBands()
	}
	if len(cfg.Scoring.FavorableGrades) == 0 {
		cfg.Scoring.FavorableGrades = DefaultFavorableGrades()
	}

	if len(cfg.Rewards.Deltas) == 0 {
		cfg.Rewards.Deltas = DefaultRewardDeltas()
	}
	if cfg.Rewards.StartValue == 0 {
		cfg.Rewards.StartValue = 50
	}
	if cfg.Rewards.HistoryLimit == 0 {
		cfg.Rewards.HistoryLimit = 200
	}

	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 86400
	}
}

func validateConfig(cfg *Config) error {
	if diff := math.Abs(cfg.Scoring.Weights.Sum() - 1.0); diff > 1e-9 {
		return apperrors.NewInvalidConfigError(
			fmt.Sprintf("scoring weights must sum to 1.0, got %v", cfg.Scoring.Weights.Sum()))
	}
	if len(cfg.Scoring.GradeBands) < 2 {
		return apperrors.NewInvalidConfigError("at least two grade bands required")
	}
	for i := 1; i < len(cfg.Scoring.GradeBands); i++ {
		if cfg.Scoring.GradeBands[i].Min >= cfg.Scoring.GradeBands[i-1].Min {
			return apperrors.NewInvalidConfigError("grade bands must be ordered highest-first")
		}
	}
	for _, g := range cfg.Scoring.FavorableGrades {
		if _, ok := cfg.Rewards.Deltas[g]; !ok {
			return apperrors.NewInvalidConfigError(
				fmt.Sprintf("favorable grade %q has no reward delta", g))
		}
	}
	return nil
}

// DefaultFactorWeights returns the fixed production weighting of the six factors.
func DefaultFactorWeights() FactorWeights {
	return FactorWeights{
		Carbon:    0.30,
		Water:     0.15,
		Energy:    0.15,
		Transport: 0.15,
		EndOfLife: 0.15,
		Packaging: 0.10,
	}
}

// DefaultGradeBands returns the 7-band A..G scale. The band count is a tuning
// parameter; nothing else in the pipeline assumes it.
func DefaultGradeBands() []GradeBand {
	return []GradeBand{
		{Grade: "A", Min: 85},
		{Grade: "B", Min: 70},
		{Grade: "C", Min: 55},
		{Grade: "D", Min: 40},
		{Grade: "E", Min: 25},
		{Grade: "F", Min: 10},
		{Grade: "G", Min: 0},
	}
}

// DefaultFavorableGrades returns the top two bands of the default scale.
func DefaultFavorableGrades() []string {
	return []string{"A", "B"}
}

// DefaultRewardDeltas returns the per-grade account value changes.
func DefaultRewardDeltas() map[string]int {
	return map[string]int{
		"A": 15,
		"B": 10,
		"C": 5,
		"D": 0,
		"E": -5,
		"F": -10,
		"G": -15,
	}
}
