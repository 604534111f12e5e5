package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig writes the configuration to path as YAML.
func WriteConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	// Validate log level if set
	if cfg.LogLevel != "" {
		validLogLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLogLevels[cfg.LogLevel] {
			return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
		}
	}

	// Validate trainer section. num_envs seeds the parallelism search, so it
	// must be a usable positive starting point.
	if cfg.Trainer.NumEnvs <= 0 {
		return fmt.Errorf("trainer.num_envs must be positive, got %d", cfg.Trainer.NumEnvs)
	}
	if cfg.Trainer.TrainBatchSize <= 0 {
		return fmt.Errorf("trainer.train_batch_size must be positive, got %d", cfg.Trainer.TrainBatchSize)
	}
	if cfg.Trainer.NumEpisodes < 0 {
		return fmt.Errorf("trainer.num_episodes cannot be negative, got %v", cfg.Trainer.NumEpisodes)
	}

	// Validate env section
	if cfg.Env.EpisodeLength <= 0 {
		return fmt.Errorf("env.episode_length must be positive, got %v", cfg.Env.EpisodeLength)
	}

	return nil
}
