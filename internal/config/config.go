// Package config loads service configuration from YAML with validation and
// sensible defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Store    StoreConfig    `yaml:"store"`
	Preview  PreviewConfig  `yaml:"preview"`
}

type LogConfig struct {
	Level         string `yaml:"level" validate:"oneof=debug info warn error"`
	HumanReadable bool   `yaml:"human_readable"`
}

type PipelineConfig struct {
	Workers       int           `yaml:"workers" validate:"min=1,max=256"`
	QueueDepth    int           `yaml:"queue_depth" validate:"min=1,max=4096"`
	Timeout       time.Duration `yaml:"timeout" validate:"min=1s"`
	Retention     time.Duration `yaml:"retention" validate:"min=1m"`
	OCRLanguage   string        `yaml:"ocr_language"`
	MinConfidence float64       `yaml:"min_confidence" validate:"min=0,max=1"`
}

type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend" validate:"oneof=memory sqlite"`

	// Path is the sqlite database file; ignored for the memory backend.
	Path string `yaml:"path"`

	// SweepSchedule is a cron expression for retention sweeps.
	SweepSchedule string `yaml:"sweep_schedule"`
}

type PreviewConfig struct {
	FontFile  string  `yaml:"font_file" validate:"omitempty,file"`
	StockRate float64 `yaml:"stock_rate" validate:"min=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Pipeline: PipelineConfig{
			Workers:       4,
			QueueDepth:    32,
			Timeout:       120 * time.Second,
			Retention:     24 * time.Hour,
			OCRLanguage:   "eng",
			MinConfidence: 0.5,
		},
		Store: StoreConfig{
			Backend:       "memory",
			SweepSchedule: "@every 1h",
		},
		Preview: PreviewConfig{
			StockRate: 10,
		},
	}
}

// Load reads and validates a YAML config file. Fields absent from the file
// keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
