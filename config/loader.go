package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Loader handles loading and initial parsing of the Config from a file.
type Loader struct {
	filePath string
}

// NewLoader creates a configuration loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads the configuration file, unmarshals it, applies defaults and
// environment overrides, and performs basic validation. A .env file in the
// working directory is honored when present.
func (l *Loader) Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if l.filePath != "" {
		content, err := os.ReadFile(l.filePath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", l.filePath)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal config YAML from %s", l.filePath)
		}
	}

	applyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASKCORES_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKCORES_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DATABASE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = n
		}
	}
	if v := os.Getenv("DATABASE_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DATABASE_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("CHECKER_ENDPOINT"); v != "" {
		cfg.Checker.Endpoint = v
	}
}

func validate(cfg *Config) error {
	if cfg.BatchSize < 1 {
		return errors.Errorf("config validation failed: batchSize must be positive, got %d", cfg.BatchSize)
	}
	if cfg.Workers < 1 {
		return errors.Errorf("config validation failed: workers must be positive, got %d", cfg.Workers)
	}
	return nil
}
