package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurora-quote/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Zero(t, cfg.Pricing.RatePerHour, "the matrix decides the rate")
	assert.Equal(t, "RUB", cfg.Pricing.Currency)
	assert.True(t, cfg.Diagnostics.SelfCheckOnStart)
	assert.False(t, cfg.Diagnostics.FailOnBroken)
	assert.Empty(t, cfg.Catalog.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Pricing.RatePerHour = 5200
	cfg.Catalog.Path = "matrix.xlsx"
	cfg.Catalog.Sheet = "Лист1"

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pricing": {"rate_per_hour": 6000}}`), 0644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 6000.0, cfg.Pricing.RatePerHour)
	assert.Equal(t, "RUB", cfg.Pricing.Currency)
	assert.True(t, cfg.Diagnostics.SelfCheckOnStart)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))

	_, err := Load(path)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvRatePerHour, " 5500 ")
	t.Setenv(EnvCurrency, "EUR")
	t.Setenv(EnvCatalog, "/etc/aurora/matrix.hcl")
	t.Setenv(EnvSheet, "Prices")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvFailBroken, "true")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, 5500.0, cfg.Pricing.RatePerHour)
	assert.Equal(t, "EUR", cfg.Pricing.Currency)
	assert.Equal(t, "/etc/aurora/matrix.hcl", cfg.Catalog.Path)
	assert.Equal(t, "Prices", cfg.Catalog.Sheet)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Diagnostics.FailOnBroken)
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "rate", key: EnvRatePerHour, value: "a lot"},
		{name: "fail flag", key: EnvFailBroken, value: "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			err := Default().ApplyEnv()
			assert.True(t, errors.IsType(err, errors.TypeConfig))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AURORA_CURRENCY=KZT\n"), 0644))
	t.Setenv(EnvCurrency, "")
	require.NoError(t, os.Unsetenv(EnvCurrency))

	LoadDotEnv(path)
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "KZT", cfg.Pricing.Currency)
	require.NoError(t, os.Unsetenv(EnvCurrency))
}

func TestGlobalConfig(t *testing.T) {
	original := Get()
	defer Set(original)

	cfg := Default()
	cfg.Pricing.Currency = "USD"
	Set(cfg)

	assert.Equal(t, "USD", Get().Pricing.Currency)
}
