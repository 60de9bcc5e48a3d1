package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScenarioPath string // hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates a Config value.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenarioPath == "" {
		return nil, errors.New("ScenarioPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
