package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Retry.MaxAttempts < 0 {
		return nil, fmt.Errorf("retry: max_attempts must be positive, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.InitialDelay < 0 || cfg.Retry.MaxDelay < 0 {
		return nil, fmt.Errorf("retry: delays must be positive")
	}
	if cfg.Retry.BackoffMultiple < 0 {
		return nil, fmt.Errorf("retry: backoff_multiple must be positive, got %v", cfg.Retry.BackoffMultiple)
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = 2 * time.Second
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 30 * time.Second
	}
	if cfg.Retry.BackoffMultiple == 0 {
		cfg.Retry.BackoffMultiple = 2.0
	}

	for i := range cfg.Jobs {
		if cfg.Jobs[i].Name == "" {
			return nil, fmt.Errorf("job %d: name is required", i)
		}
		if cfg.Jobs[i].InputDir == "" {
			return nil, fmt.Errorf("job %q: input_dir is required", cfg.Jobs[i].Name)
		}
		if cfg.Jobs[i].Interval == 0 {
			cfg.Jobs[i].Interval = 30 * time.Second
		}
		if cfg.Jobs[i].Pattern == "" {
			cfg.Jobs[i].Pattern = "*.csv"
		}
	}

	return &cfg, nil
}
