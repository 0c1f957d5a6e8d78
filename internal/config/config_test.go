package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cabstats/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Ledger.FuelShare = decimal.RequireFromString("0.4")
	cfg.Ledger.DefaultFuelSource = string(model.AccountCash)
	cfg.Log.Level = "DEBUG"

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Ledger.Currency, got.Ledger.Currency)
	assert.True(t, cfg.Ledger.FuelShare.Equal(got.Ledger.FuelShare))
	assert.Equal(t, model.AccountCash, got.FuelSource())
	assert.Equal(t, cfg.Storage.Database, got.Storage.Database)
	assert.Equal(t, "DEBUG", got.Log.Level)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "INR", cfg.Ledger.Currency)
	assert.True(t, cfg.Ledger.FuelShare.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, model.AccountMain, cfg.FuelSource())
	assert.Equal(t, "cabstats.db", cfg.Storage.Database)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDir_FallsBackToDefault(t *testing.T) {
	cfg, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: ERROR\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Log.Level)
	assert.Equal(t, "INR", cfg.Ledger.Currency)
	assert.True(t, cfg.Ledger.FuelShare.Equal(decimal.RequireFromString("0.5")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero share", func(c *Config) { c.Ledger.FuelShare = decimal.Zero }},
		{"share above one", func(c *Config) { c.Ledger.FuelShare = decimal.RequireFromString("1.5") }},
		{"unknown source", func(c *Config) { c.Ledger.DefaultFuelSource = "Savings" }},
		{"fuel as source", func(c *Config) { c.Ledger.DefaultFuelSource = string(model.AccountFuel) }},
		{"no currency", func(c *Config) { c.Ledger.Currency = "" }},
		{"no database", func(c *Config) { c.Storage.Database = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "TRACE" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "currency: INR")
	assert.Contains(t, contents, "default_fuel_source: Main Account")
	assert.Contains(t, contents, "database: cabstats.db")
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/data", "cabstats.db"), cfg.DatabasePath("/data"))

	cfg.Storage.Database = "/var/lib/cabstats.db"
	assert.Equal(t, "/var/lib/cabstats.db", cfg.DatabasePath("/data"))
}
