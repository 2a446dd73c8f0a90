package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/datamilo/StockPriceStats/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Data struct {
		AllPricesFile      string `yaml:"all_prices_file"`
		FilteredPricesFile string `yaml:"filtered_prices_file"`
	} `yaml:"data"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
	Analysis struct {
		WindowDays  []int `yaml:"window_days"`
		WaitTimes   []int `yaml:"wait_times"`
		ExpiryTimes []int `yaml:"expiry_times"`
		Workers     int   `yaml:"workers"`
	} `yaml:"analysis"`
	Schedule struct {
		UpdateCron string `yaml:"update_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PRICE_DATA_ALL"); v != "" {
		cfg.Data.AllPricesFile = v
	}
	if v := os.Getenv("PRICE_DATA_FILTERED"); v != "" {
		cfg.Data.FilteredPricesFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("ANALYSIS_WORKERS"); v != "" {
		var workers int
		if _, err := fmt.Sscanf(v, "%d", &workers); err == nil {
			cfg.Analysis.Workers = workers
		}
	}
	if v := os.Getenv("CRON_UPDATE"); v != "" {
		cfg.Schedule.UpdateCron = v
	}

	// Defaults
	if cfg.Data.AllPricesFile == "" {
		cfg.Data.AllPricesFile = "data/price_data_all.csv"
	}
	if cfg.Data.FilteredPricesFile == "" {
		cfg.Data.FilteredPricesFile = "data/price_data_filtered.csv"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stockpricestats.db"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "results"
	}
	if len(cfg.Analysis.WindowDays) == 0 {
		cfg.Analysis.WindowDays = model.DefaultWindowDays
	}
	if len(cfg.Analysis.WaitTimes) == 0 {
		cfg.Analysis.WaitTimes = model.DefaultWaitTimes
	}
	if len(cfg.Analysis.ExpiryTimes) == 0 {
		cfg.Analysis.ExpiryTimes = model.DefaultExpiryTimes
	}
	if cfg.Schedule.UpdateCron == "" {
		cfg.Schedule.UpdateCron = "0 30 22 * * 1-5"
	}

	return cfg, nil
}

// WindowSpecs builds the per-period test grids from the configured values.
func (c *Config) WindowSpecs() []model.WindowSpec {
	specs := make([]model.WindowSpec, 0, len(c.Analysis.WindowDays))
	for _, d := range c.Analysis.WindowDays {
		specs = append(specs, model.NewWindowSpec(d, c.Analysis.WaitTimes, c.Analysis.ExpiryTimes))
	}
	return specs
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Data.FilteredPricesFile == "" {
		return fmt.Errorf("data.filtered_prices_file is required")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative")
	}
	for _, spec := range c.WindowSpecs() {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("analysis window %d: %w", spec.WindowDays, err)
		}
	}
	return nil
}
