package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	LogLevel     string
	Port         int
	DevMode      bool

	// Behavior engine policy constants. The numeric defaults are inherited
	// tuning values, not derived quantities; override via environment.
	DecayFactor  float64 // multiplier applied to historical evidence per decay cycle
	DecayGapDays int     // minimum gap between decay applications

	ElasticityBase  float64 // elasticity at zero coefficient of variation
	ElasticitySlope float64 // elasticity gain per unit of coefficient of variation

	// Lean period detection thresholds
	LeanSigmaK   float64 // std-dev multiplier below the mean that marks a period lean
	LeanNetFloor float64 // net flow below -floor is always lean, regardless of history

	// Forecasting
	VolatilityRiskThreshold float64 // income CV above this emits a risk warning
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8002),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DatabasePath: getEnv("DATABASE_PATH", "./data/finpulse.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		DecayFactor:  getEnvAsFloat("BEHAVIOR_DECAY_FACTOR", 0.98),
		DecayGapDays: getEnvAsInt("BEHAVIOR_DECAY_GAP_DAYS", 7),

		ElasticityBase:  getEnvAsFloat("ELASTICITY_BASE", 0.2),
		ElasticitySlope: getEnvAsFloat("ELASTICITY_SLOPE", 0.5),

		LeanSigmaK:   getEnvAsFloat("LEAN_SIGMA_K", 0.5),
		LeanNetFloor: getEnvAsFloat("LEAN_NET_FLOOR", 500.0),

		VolatilityRiskThreshold: getEnvAsFloat("VOLATILITY_RISK_THRESHOLD", 0.5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.DecayFactor <= 0 || c.DecayFactor > 1 {
		return fmt.Errorf("BEHAVIOR_DECAY_FACTOR must be in (0, 1], got %v", c.DecayFactor)
	}
	if c.DecayGapDays < 1 {
		return fmt.Errorf("BEHAVIOR_DECAY_GAP_DAYS must be >= 1, got %d", c.DecayGapDays)
	}
	if c.LeanSigmaK < 0 {
		return fmt.Errorf("LEAN_SIGMA_K must be >= 0, got %v", c.LeanSigmaK)
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
