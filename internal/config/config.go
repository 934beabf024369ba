package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	DBPath     string `json:"db_path"`
	Port       int    `json:"port"`
	APIBaseURL string `json:"api_base_url"`
	Debug      bool   `json:"debug"`
}

func Default() Config {
	return Config{Port: 8080}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "taskdeck", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(config), nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return applyEnv(config), nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// applyEnv lets the environment win over the file for deployments that
// cannot write a config file.
func applyEnv(cfg Config) Config {
	if value := os.Getenv("TASKDECK_API_URL"); value != "" {
		cfg.APIBaseURL = value
	}
	if value := os.Getenv("TASKDECK_DEBUG"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			cfg.Debug = parsed
		}
	}
	return cfg
}
