// Package config loads service configuration from defaults, an optional
// yaml file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when no explicit path is given.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moodflix/config.yaml",
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	LLM      LLMConfig      `koanf:"llm"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type TMDBConfig struct {
	BaseURL   string `koanf:"base_url"`
	ImageBase string `koanf:"image_base"`
	APIKey    string `koanf:"api_key"`
}

type LLMConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func defaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8100"},
		Database: DatabaseConfig{Path: "moodflix.db"},
		TMDB: TMDBConfig{
			BaseURL:   "https://api.themoviedb.org/3",
			ImageBase: "https://image.tmdb.org/t/p",
		},
		LLM: LLMConfig{
			Model: "gpt-3.5-turbo",
		},
		Log: LogConfig{Level: "info"},
	}
}

// envMappings translates flat environment variables to config keys.
var envMappings = map[string]string{
	"moodflix_addr":       "server.addr",
	"moodflix_db_path":    "database.path",
	"tmdb_base_url":       "tmdb.base_url",
	"tmdb_image_base":     "tmdb.image_base",
	"tmdb_api_key":        "tmdb.api_key",
	"openai_base_url":     "llm.base_url",
	"openai_api_key":      "llm.api_key",
	"openai_model":        "llm.model",
	"moodflix_log_level":  "log.level",
}

// Load builds the effective configuration. path may be empty, in which
// case DefaultConfigPaths are probed; a missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := path
	if configPath == "" {
		for _, p := range DefaultConfigPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(key string) string {
		return envMappings[strings.ToLower(key)]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must not be empty")
	}
	return nil
}
