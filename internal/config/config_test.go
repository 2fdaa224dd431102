package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.InDelta(t, 0.8, cfg.FidelityMin, 1e-12)
	assert.Equal(t, 5, cfg.GridSteps)
	assert.InDelta(t, 0.94, cfg.BellProbs[0], 1e-12)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("QNETSIM_LOG_LEVEL", "debug")
	t.Setenv("QNETSIM_SEED", "42")
	t.Setenv("QNETSIM_FIDELITY_MIN", "0.5")
	t.Setenv("QNETSIM_GRID_STEPS", "11")
	t.Setenv("QNETSIM_BELL_P0", "0.7")
	t.Setenv("QNETSIM_BELL_P1", "0.1")
	t.Setenv("QNETSIM_BELL_P2", "0.1")
	t.Setenv("QNETSIM_BELL_P3", "0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.InDelta(t, 0.5, cfg.FidelityMin, 1e-12)
	assert.Equal(t, 11, cfg.GridSteps)
	assert.InDelta(t, 0.7, cfg.BellProbs[0], 1e-12)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("QNETSIM_SEED", "not-a-number")
	t.Setenv("QNETSIM_GRID_STEPS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, 5, cfg.GridSteps)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"fidelity above 1", func(c *Config) { c.FidelityMin = 1.5 }, true},
		{"fidelity below 0", func(c *Config) { c.FidelityMin = -0.1 }, true},
		{"zero grid steps", func(c *Config) { c.GridSteps = 0 }, true},
		{"negative bell element", func(c *Config) { c.BellProbs[1] = -0.2 }, true},
		{"all-zero bell vector", func(c *Config) { c.BellProbs = [4]float64{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel:    "info",
				FidelityMin: 0.8,
				GridSteps:   5,
				BellProbs:   [4]float64{0.94, 0.02, 0.02, 0.02},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
