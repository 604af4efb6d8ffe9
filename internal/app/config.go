package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScriptPath string // .hcl, .yaml or .yml files, or a directory of them

	// Overrides applied on top of the script. Nil means keep the script value.
	Seed       *uint64
	StepDelay  *time.Duration
	Privileged bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	RelayURL       string
	RelayNamespace string

	Color bool
	Trace bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScriptPath == "" {
		return nil, errors.New("ScriptPath is a required configuration field and cannot be empty")
	}
	if cfg.StepDelay != nil && *cfg.StepDelay < 0 {
		return nil, errors.New("step delay cannot be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, errors.New("healthcheck port must be between 0 and 65535")
	}
	return &cfg, nil
}
