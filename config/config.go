// Package config loads the process-wide billing configuration.
//
// Charge rates and the advance coverage policy are read once at start-up
// and handed to billing.NewEngine. Nothing reloads them: repricing would
// require versioning bills by the rate set that priced them.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/billing-engine/billing"
)

// EnvConfigPath names the variable consulted when no path is given.
const EnvConfigPath = "BILLING_CONFIG"

// RatesFile mirrors the rates block of the YAML file. Values are strings
// so they parse straight into decimals without a float round trip.
type RatesFile struct {
	Amenities   string `yaml:"amenities"`
	Security    string `yaml:"security"`
	Maintenance string `yaml:"maintenance"`
}

// File is the on-disk layout.
type File struct {
	Rates    RatesFile `yaml:"rates"`
	Coverage string    `yaml:"coverage"`
}

// Config is the validated, immutable result.
type Config struct {
	Rates    billing.ChargeRates
	Coverage billing.CoveragePolicy
}

// Default returns the standard rates with partial-month coverage.
func Default() Config {
	return Config{
		Rates:    billing.DefaultChargeRates(),
		Coverage: billing.CoverPartialMonth,
	}
}

// Load reads path, or $BILLING_CONFIG when path is empty. With neither set
// the defaults are returned. Rates left out of the file keep their default.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML config bytes.
func Parse(data []byte) (Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	cfg := Default()
	for _, r := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"amenities", f.Rates.Amenities, &cfg.Rates.Amenities},
		{"security", f.Rates.Security, &cfg.Rates.Security},
		{"maintenance", f.Rates.Maintenance, &cfg.Rates.Maintenance},
	} {
		if r.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(r.raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s rate %q: %w", r.name, r.raw, err)
		}
		*r.dst = d
	}
	if err := cfg.Rates.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	coverage, err := billing.ParseCoveragePolicy(f.Coverage)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.Coverage = coverage
	return cfg, nil
}
