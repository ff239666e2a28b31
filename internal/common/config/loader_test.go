package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ecoscore/internal/common/errors"
)

func validTestConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validTestConfig()

	assert.Equal(t, "scorer-service", cfg.App.Name)
	assert.Equal(t, 3000, cfg.Providers.CarbonLedger.Timeout)
	assert.InDelta(t, 2.5, cfg.Providers.QualityThreshold, 1e-9)
	assert.Equal(t, 50, cfg.Rewards.StartValue)
	assert.Equal(t, 200, cfg.Rewards.HistoryLimit)
	assert.Equal(t, 86400, cfg.Cache.TTLSeconds)
	assert.Len(t, cfg.Scoring.GradeBands, 7)
}

func TestValidateConfig_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, validateConfig(validTestConfig()))
}

func TestValidateConfig_WeightsMustSumToOne(t *testing.T) {
	cfg := validTestConfig()
	cfg.Scoring.Weights.Carbon = 0.5 // sum now 1.2

	err := validateConfig(cfg)
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeInvalidConfig, stdErr.Code)
}

func TestValidateConfig_BandsMustBeOrderedHighestFirst(t *testing.T) {
	cfg := validTestConfig()
	cfg.Scoring.GradeBands = []GradeBand{
		{Grade: "B", Min: 70},
		{Grade: "A", Min: 85},
	}

	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfig_RequiresAtLeastTwoBands(t *testing.T) {
	cfg := validTestConfig()
	cfg.Scoring.GradeBands = []GradeBand{{Grade: "A", Min: 0}}

	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfig_FavorableGradesNeedDeltas(t *testing.T) {
	cfg := validTestConfig()
	cfg.Scoring.FavorableGrades = []string{"A", "S"}

	assert.Error(t, validateConfig(cfg))
}

func TestFactorWeightsSum(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultFactorWeights().Sum(), 1e-9)
}

func TestGetDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "ecoscore",
		User:     "svc",
		Password: "secret",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=svc password=secret dbname=ecoscore sslmode=disable",
		cfg.GetDSN())
}

func TestDefaultRewardDeltas_CoverAllDefaultBands(t *testing.T) {
	deltas := DefaultRewardDeltas()
	for _, band := range DefaultGradeBands() {
		_, ok := deltas[band.Grade]
		assert.True(t, ok, "grade %s has no delta", band.Grade)
	}
}
