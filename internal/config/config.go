// Package config loads tally.yaml, with overrides from TALLY_* environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/journal"
	"github.com/cleared-dev/tally/internal/ledgerfile"
)

// FileName is the config file looked up in the working directory.
const FileName = "tally.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TALLY_"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Ledger LedgerConfig `yaml:"ledger"`
	Report ReportConfig `yaml:"report"`
	Import ImportConfig `yaml:"import"`
	Log    LogConfig    `yaml:"log"`
	Git    GitConfig    `yaml:"git"`
}

// LedgerConfig locates the ledger.
type LedgerConfig struct {
	Path         string `yaml:"path" env:"LEDGER"`                                 // file or directory of *.toml files
	ImportTarget string `yaml:"import_target,omitempty" env:"LEDGER_IMPORT_TARGET"` // file imports are appended to
}

// ReportConfig holds report defaults.
type ReportConfig struct {
	Price      string `yaml:"price,omitempty" env:"PRICE"`
	PayeeMatch string `yaml:"payee_match" env:"PAYEE_MATCH"`
}

// ImportConfig holds CSV import defaults.
type ImportConfig struct {
	Preset        string           `yaml:"preset" env:"IMPORT_PRESET"`
	DateFormat    string           `yaml:"date_format,omitempty" env:"IMPORT_DATE_FORMAT"`
	Sign          string           `yaml:"sign,omitempty" env:"IMPORT_SIGN"`
	Account       string           `yaml:"account,omitempty" env:"IMPORT_ACCOUNT"`
	OffsetAccount string           `yaml:"offset_account,omitempty" env:"IMPORT_OFFSET_ACCOUNT"`
	Columns       importer.Mapping `yaml:"columns,omitempty"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" env:"GIT_AUTO_COMMIT"`
	AuthorName  string `yaml:"author_name" env:"GIT_AUTHOR_NAME"`
	AuthorEmail string `yaml:"author_email" env:"GIT_AUTHOR_EMAIL"`
}

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Path: "ledger.toml",
		},
		Report: ReportConfig{
			PayeeMatch: string(journal.PayeeExact),
		},
		Import: ImportConfig{
			Preset: importer.GenericPreset.Name,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "tally",
			AuthorEmail: "tally@localhost",
		},
	}
}

// Load reads a tally.yaml file from disk. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
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

// Resolve loads the config at path, falling back to defaults when the file
// does not exist, then applies a .env file next to it and TALLY_* variables.
// Variables already set in the environment win over the .env file.
func Resolve(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any TALLY_* environment variables.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if c.Ledger.Path == "" {
		return fmt.Errorf("config: ledger.path is required")
	}
	if _, err := journal.ParsePayeeMatch(c.Report.PayeeMatch); err != nil {
		return fmt.Errorf("config: report.payee_match: %w", err)
	}
	if _, err := importer.ParseSignConvention(c.Import.Sign); err != nil {
		return fmt.Errorf("config: import.sign: %w", err)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Warnings lists settings that are valid but probably not what was meant.
func (c *Config) Warnings() []string {
	var warnings []string
	if !c.importTargetInLedger() {
		warnings = append(warnings, fmt.Sprintf(
			"import target %s is not read as part of ledger %s; imported transactions will not appear in reports",
			c.ImportTarget(), c.Ledger.Path))
	}
	return warnings
}

// importTargetInLedger reports whether loading the ledger also reads the
// import target: it is the ledger file, or a *.toml file directly inside
// the ledger directory.
func (c *Config) importTargetInLedger() bool {
	ledgerPath := filepath.Clean(c.Ledger.Path)
	target := filepath.Clean(c.ImportTarget())
	if target == ledgerPath {
		return true
	}
	info, err := os.Stat(ledgerPath)
	if err != nil || !info.IsDir() {
		return false
	}
	return filepath.Dir(target) == ledgerPath && filepath.Ext(target) == ledgerfile.Ext
}

// ImportTarget returns the file imported transactions are appended to.
// Without an explicit target this is the ledger file itself, or
// imported.toml inside a ledger directory.
func (c *Config) ImportTarget() string {
	if c.Ledger.ImportTarget != "" {
		return c.Ledger.ImportTarget
	}
	if info, err := os.Stat(c.Ledger.Path); err == nil && info.IsDir() {
		return filepath.Join(c.Ledger.Path, "imported.toml")
	}
	return c.Ledger.Path
}
