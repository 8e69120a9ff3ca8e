package config

import "time"

const (
	DefaultLogLevel         = "info"
	DefaultWorkDir          = "./.taskcores_work"
	DefaultBatchSize        = 100
	DefaultWorkers          = 8
	DefaultUploadAttempts   = 3
	DefaultUploadRetryDelay = 5 * time.Second
	DefaultCheckerTimeout   = 30 * time.Second
)

// ApplyDefaults fills unset fields with their defaults. It modifies cfg in
// place and returns it for chaining.
func ApplyDefaults(cfg *Config) *Config {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.UploadAttempts <= 0 {
		cfg.UploadAttempts = DefaultUploadAttempts
	}
	if cfg.UploadRetryDelay <= 0 {
		cfg.UploadRetryDelay = DefaultUploadRetryDelay
	}
	if cfg.Checker.Timeout <= 0 {
		cfg.Checker.Timeout = DefaultCheckerTimeout
	}
	return cfg
}
