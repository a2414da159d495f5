package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines client configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Token  TokenConfig  `yaml:"token"`
	Export ExportConfig `yaml:"export"`
	Log    LogConfig    `yaml:"log"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TokenConfig struct {
	Path string `yaml:"path"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		API: APIConfig{
			BaseURL:        "http://127.0.0.1:8000/api",
			TimeoutSeconds: 30,
		},
		Token: TokenConfig{
			Path: "scopeai.db",
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("SCOPEAI_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if baseURL := os.Getenv("SCOPEAI_API_BASE_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if timeoutStr := os.Getenv("SCOPEAI_API_TIMEOUT_SECONDS"); timeoutStr != "" {
		timeout, err := strconv.Atoi(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCOPEAI_API_TIMEOUT_SECONDS: %w", err)
		}
		cfg.API.TimeoutSeconds = timeout
	}
	if tokenPath := os.Getenv("SCOPEAI_TOKEN_DB_PATH"); tokenPath != "" {
		cfg.Token.Path = tokenPath
	}
	if exportDir := os.Getenv("SCOPEAI_EXPORT_DIR"); exportDir != "" {
		cfg.Export.Dir = exportDir
	}
	if level := os.Getenv("SCOPEAI_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
