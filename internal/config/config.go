// Package config loads the simulator's runtime configuration from the
// environment. The merge core itself takes plain parameters; this only
// feeds the sweep CLI.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the sweep-runner configuration.
type Config struct {
	LogLevel string
	Pretty   bool

	// Seed for sampled trajectories; 0 means time-seeded.
	Seed uint64

	// Fidelity grid: GridSteps points from FidelityMin to 1.0 for both the
	// CNOT and the measurement fidelity.
	FidelityMin float64
	GridSteps   int

	// BellProbs are the Bell-diagonal elements of both input resource
	// states, dominant component first (Φ+ slot under identity ordering).
	BellProbs [4]float64
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("QNETSIM_LOG_LEVEL", "info"),
		Pretty:      getEnvAsBool("QNETSIM_LOG_PRETTY", true),
		Seed:        getEnvAsUint("QNETSIM_SEED", 0),
		FidelityMin: getEnvAsFloat("QNETSIM_FIDELITY_MIN", 0.8),
		GridSteps:   getEnvAsInt("QNETSIM_GRID_STEPS", 5),
		BellProbs: [4]float64{
			getEnvAsFloat("QNETSIM_BELL_P0", 0.94),
			getEnvAsFloat("QNETSIM_BELL_P1", 0.02),
			getEnvAsFloat("QNETSIM_BELL_P2", 0.02),
			getEnvAsFloat("QNETSIM_BELL_P3", 0.02),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges the CLI relies on.
func (c *Config) Validate() error {
	if c.FidelityMin < 0 || c.FidelityMin > 1 {
		return fmt.Errorf("QNETSIM_FIDELITY_MIN %g outside [0,1]", c.FidelityMin)
	}
	if c.GridSteps < 1 {
		return fmt.Errorf("QNETSIM_GRID_STEPS must be at least 1, got %d", c.GridSteps)
	}
	sum := 0.0
	for _, p := range c.BellProbs {
		if p < 0 {
			return fmt.Errorf("negative Bell-diagonal element %g", p)
		}
		sum += p
	}
	if sum == 0 {
		return fmt.Errorf("Bell-diagonal elements sum to 0")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
