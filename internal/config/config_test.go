package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fam450/domain/sampling"
	"fam450/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FAM450_OVR", "FAM450_SAMPLE_SIZES", "FAM450_RATES", "FAM450_WORKERS", "PORT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.10, cfg.Tables.OVR)
	assert.Equal(t, sampling.DefaultGrid(), cfg.Tables.Grid)
	assert.Equal(t, 4, cfg.Tables.Workers)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FAM450_OVR", "5%")
	t.Setenv("FAM450_SAMPLE_SIZES", "25, 158")
	t.Setenv("FAM450_RATES", "2%,0.05")
	t.Setenv("FAM450_WORKERS", "8")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.05, cfg.Tables.OVR, 1e-12)
	assert.Equal(t, []int{25, 158}, cfg.Tables.Grid.SampleSizes)
	assert.InDeltaSlice(t, []float64{0.02, 0.05}, cfg.Tables.Grid.Rates, 1e-12)
	assert.Equal(t, 8, cfg.Tables.Workers)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"ovr out of range", "FAM450_OVR", "1.5"},
		{"ovr malformed", "FAM450_OVR", "ten percent"},
		{"bad size", "FAM450_SAMPLE_SIZES", "45,abc"},
		{"zero size", "FAM450_SAMPLE_SIZES", "0"},
		{"bad rate", "FAM450_RATES", "0.05,x"},
		{"rate out of range", "FAM450_RATES", "100%"},
		{"no workers", "FAM450_WORKERS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestParseRate(t *testing.T) {
	v, err := ParseRate(" 10% ")
	require.NoError(t, err)
	assert.InDelta(t, 0.10, v, 1e-12)

	v, err = ParseRate("0.025")
	require.NoError(t, err)
	assert.Equal(t, 0.025, v)

	_, err = ParseRate("%")
	assert.Error(t, err)
}
