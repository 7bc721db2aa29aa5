package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"fam450/domain/sampling"
	"fam450/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Tables  TablesConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// TablesConfig holds the default table grid and generation settings
type TablesConfig struct {
	OVR     float64
	Grid    sampling.Grid
	Workers int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it.
// Callers load a .env file first when they want one.
func Load() (*Config, error) {
	config := &Config{}

	tablesConfig, err := loadTablesConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load table configuration")
	}
	config.Tables = *tablesConfig

	config.Server = ServerConfig{Port: getEnvOrDefault("PORT", "8080")}
	config.Logging = LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadTablesConfig() (*TablesConfig, error) {
	defaults := sampling.DefaultGrid()

	ovr, err := getEnvFloat("FAM450_OVR", 0.10)
	if err != nil {
		return nil, err
	}
	sizes, err := ParseSampleSizes(getEnvOrDefault("FAM450_SAMPLE_SIZES", ""), defaults.SampleSizes)
	if err != nil {
		return nil, errors.ConfigInvalid("FAM450_SAMPLE_SIZES: " + err.Error())
	}
	rates, err := ParseRates(getEnvOrDefault("FAM450_RATES", ""), defaults.Rates)
	if err != nil {
		return nil, errors.ConfigInvalid("FAM450_RATES: " + err.Error())
	}

	return &TablesConfig{
		OVR:     ovr,
		Grid:    sampling.Grid{SampleSizes: sizes, Rates: rates},
		Workers: getEnvIntOrDefault("FAM450_WORKERS", 4),
	}, nil
}

func validateConfig(config *Config) error {
	if !(config.Tables.OVR > 0 && config.Tables.OVR < 1) {
		return errors.ConfigInvalid(fmt.Sprintf("FAM450_OVR must be in (0, 1), got %g", config.Tables.OVR))
	}
	if err := config.Tables.Grid.Validate(); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "invalid table grid")
	}
	if config.Tables.Workers < 1 {
		return errors.ConfigInvalid("FAM450_WORKERS must be at least 1")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// ParseSampleSizes reads "45,78,105"; an empty string yields def.
func ParseSampleSizes(s string, def []int) ([]int, error) {
	fields := splitList(s)
	if len(fields) == 0 {
		return append([]int(nil), def...), nil
	}
	sizes := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid sample size %q", f)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// ParseRates reads "0.05,0.1" or "5%,10%"; an empty string yields def.
func ParseRates(s string, def []float64) ([]float64, error) {
	fields := splitList(s)
	if len(fields) == 0 {
		return append([]float64(nil), def...), nil
	}
	rates := make([]float64, 0, len(fields))
	for _, f := range fields {
		rate, err := ParseRate(f)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

// ParseRate accepts a fraction ("0.05") or a percentage ("5%").
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q", s)
	}
	return v / scale, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat rejects malformed values instead of silently falling back.
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := ParseRate(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s: %v", key, err))
	}
	return floatValue, nil
}
