// Package config loads the server and console configuration from a yaml
// file with environment-variable fallbacks.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all tunables for both binaries.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Console ConsoleConfig `yaml:"console"`
}

// ServerConfig configures the scoreboard server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	SavesDB   string `yaml:"saves_db"`
	AssetsDir string `yaml:"assets_dir"`
}

// ConsoleConfig configures the operator console.
type ConsoleConfig struct {
	ServerURL      string `yaml:"server_url"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
}

// Load reads a yaml config file. A missing file is not an error; defaults
// and environment variables take over.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":5000",
			StaticDir: "static",
			SavesDB:   "saves.db",
			AssetsDir: "assets",
		},
		Console: ConsoleConfig{
			ServerURL:      "http://localhost:5000",
			RequestTimeout: 30,
		},
	}
}

// applyEnv lets environment variables override file values, dynasty-style.
func applyEnv(cfg *Config) {
	cfg.Server.Addr = getEnv("COURTSIDE_ADDR", cfg.Server.Addr)
	cfg.Server.StaticDir = getEnv("COURTSIDE_STATIC_DIR", cfg.Server.StaticDir)
	cfg.Server.SavesDB = getEnv("COURTSIDE_SAVES_DB", cfg.Server.SavesDB)
	cfg.Server.AssetsDir = getEnv("COURTSIDE_ASSETS_DIR", cfg.Server.AssetsDir)
	cfg.Console.ServerURL = getEnv("COURTSIDE_SERVER_URL", cfg.Console.ServerURL)
	cfg.Console.RequestTimeout = getEnvAsInt("COURTSIDE_REQUEST_TIMEOUT", cfg.Console.RequestTimeout)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
