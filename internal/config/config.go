package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/cabstats/internal/logger"
	"github.com/cleared-dev/cabstats/internal/model"
)

// FileName is the config file kept in the data directory.
const FileName = "cabstats.yaml"

// Config represents the top-level cabstats.yaml configuration.
type Config struct {
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// LedgerConfig controls the accounting rules.
type LedgerConfig struct {
	Currency          string          `yaml:"currency"`            // ISO 4217 code used for display
	FuelShare         decimal.Decimal `yaml:"fuel_share"`          // share of ride profit earmarked for fuel
	DefaultFuelSource string          `yaml:"default_fuel_source"` // account fuel transfers are paid from
}

// StorageConfig locates the database.
type StorageConfig struct {
	Database string `yaml:"database"` // relative paths resolve against the data directory
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a cabstats.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadDir reads the config from a data directory, falling back to defaults
// when the directory has none.
func LoadDir(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Currency:          "INR",
			FuelShare:         decimal.RequireFromString("0.5"),
			DefaultFuelSource: string(model.AccountMain),
		},
		Storage: StorageConfig{
			Database: "cabstats.db",
		},
		Log: LogConfig{
			Level:  logger.LevelWarn,
			Format: logger.FormatText,
		},
	}
}

// Validate checks the values a hand-edited file could get wrong.
func (c *Config) Validate() error {
	if !c.Ledger.FuelShare.IsPositive() || c.Ledger.FuelShare.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("ledger.fuel_share must be in (0, 1], got %s", c.Ledger.FuelShare)
	}
	src, err := model.ParseAccountName(c.Ledger.DefaultFuelSource)
	if err != nil {
		return fmt.Errorf("ledger.default_fuel_source: %w", err)
	}
	if src == model.AccountFuel {
		return errors.New("ledger.default_fuel_source cannot be the Fuel Account")
	}
	if c.Ledger.Currency == "" {
		return errors.New("ledger.currency is required")
	}
	if c.Storage.Database == "" {
		return errors.New("storage.database is required")
	}
	if !logger.ValidateLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level %q is not one of DEBUG, INFO, WARN, ERROR", c.Log.Level)
	}
	return nil
}

// FuelSource returns the parsed default fuel source account.
func (c *Config) FuelSource() model.AccountName {
	src, err := model.ParseAccountName(c.Ledger.DefaultFuelSource)
	if err != nil {
		return model.AccountMain
	}
	return src
}

// DatabasePath resolves the database location against dir.
func (c *Config) DatabasePath(dir string) string {
	if filepath.IsAbs(c.Storage.Database) {
		return c.Storage.Database
	}
	return filepath.Join(dir, c.Storage.Database)
}
