package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures the database connection, training hyperparameters, and
// artifact output locations.
type Config struct {
	Database  DatabaseConfig  `yaml:"database" validate:"required"`
	Training  TrainingConfig  `yaml:"training" validate:"required"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type DatabaseConfig struct {
	// Driver is "mysql" for production or "sqlite" for local runs.
	Driver string `yaml:"driver" validate:"oneof=mysql sqlite"`
	Host   string `yaml:"host"`
	Port   string `yaml:"port"`
	// User and Password are read from DELAYTRAIN_DB_USER / DELAYTRAIN_DB_PASSWORD
	// when empty. Credentials never belong in the config file itself.
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`
}

type TrainingConfig struct {
	// TestFraction of rows held out for evaluation.
	TestFraction float64 `yaml:"testFraction" validate:"gt=0,lt=1"`
	// Seed drives the split shuffle and both model fits. Runs with the
	// same seed and the same data are reproducible.
	Seed    int64        `yaml:"seed"`
	Workers int          `yaml:"workers" validate:"gte=0"`
	GBT     GBTConfig    `yaml:"gbt"`
	Forest  ForestConfig `yaml:"forest"`
}

type GBTConfig struct {
	Trees        int     `yaml:"trees" validate:"gt=0"`
	MaxDepth     int     `yaml:"maxDepth" validate:"gt=0"`
	LearningRate float64 `yaml:"learningRate" validate:"gt=0,lte=1"`
}

type ForestConfig struct {
	Trees    int `yaml:"trees" validate:"gt=0"`
	MaxDepth int `yaml:"maxDepth" validate:"gt=0"`
}

type ArtifactsConfig struct {
	// Dir receives model.json, encoder.json, and metadata.yaml.
	Dir string `yaml:"dir"`
}

type MetricsConfig struct {
	// Addr enables the /metrics listener when non-empty, e.g. ":9090".
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: "mysql",
			Host:   "127.0.0.1",
			Port:   "3306",
			DBName: "railways",
		},
		Training: TrainingConfig{
			TestFraction: 0.2,
			Seed:         42,
			Workers:      0, // 0 means all available cores
			GBT:          GBTConfig{Trees: 200, MaxDepth: 4, LearningRate: 0.1},
			Forest:       ForestConfig{Trees: 150, MaxDepth: 10},
		},
		Artifacts: ArtifactsConfig{Dir: "./artifacts"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
// A .env file next to the working directory is honored when present.
func (c *Config) ResolveEnv() {
	_ = godotenv.Load()
	if c.Database.User == "" {
		c.Database.User = os.Getenv("DELAYTRAIN_DB_USER")
	}
	if c.Database.Password == "" {
		c.Database.Password = os.Getenv("DELAYTRAIN_DB_PASSWORD")
	}
	if c.Database.Host == "" {
		c.Database.Host = os.Getenv("DELAYTRAIN_DB_HOST")
	}
	if c.Database.DBName == "" {
		c.Database.DBName = os.Getenv("DELAYTRAIN_DB_NAME")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Validate checks structural constraints on the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		return errors.New("invalid config: sqlite driver requires database.path")
	}
	return nil
}

// Load reads YAML config from path, resolves env overrides, and validates.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
