package config

import (
	"time"

	"github.com/mensylisir/taskcores/database"
	"github.com/mensylisir/taskcores/mail"
	"github.com/mensylisir/taskcores/transfer"
)

// CheckerConfig describes the external checker service endpoint.
type CheckerConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MailConfig couples the smtp relay with the default recipient list.
type MailConfig struct {
	mail.Config `yaml:",inline"`
	Recipients  []string `yaml:"recipients"`
}

// Config is the application configuration, loaded from a yaml file with
// environment-variable overrides on top.
type Config struct {
	LogLevel string `yaml:"logLevel"`
	LogDir   string `yaml:"logDir"`
	WorkDir  string `yaml:"workDir"`

	// BatchSize bounds the number of items per dispatched check batch.
	BatchSize int `yaml:"batchSize"`
	// Workers bounds concurrent step fan-out within one supplier.
	Workers int `yaml:"workers"`
	// UploadAttempts and UploadRetryDelay drive the fixed file-transfer
	// retry policy.
	UploadAttempts   int           `yaml:"uploadAttempts"`
	UploadRetryDelay time.Duration `yaml:"uploadRetryDelay"`

	Database database.Config `yaml:"database"`
	Checker  CheckerConfig   `yaml:"checker"`
	Transfer transfer.Config `yaml:"transfer"`
	Mail     MailConfig      `yaml:"mail"`
}
