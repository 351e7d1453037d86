// Package config resolves process-wide configuration once at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	API     APIConfig     `koanf:"api"`
	Server  ServerConfig  `koanf:"server"`
	History HistoryConfig `koanf:"history"`
	Log     LogConfig     `koanf:"log"`
}

type APIConfig struct {
	// URL is the analysis backend base address.
	URL     string        `koanf:"url"`
	Timeout TimeoutConfig `koanf:"timeout"`
}

type TimeoutConfig struct {
	// Request bounds JSON-mode calls, Upload bounds multipart calls.
	Request time.Duration `koanf:"request"`
	Upload  time.Duration `koanf:"upload"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type HistoryConfig struct {
	// Path is the SQLite file holding the call history. Empty disables
	// history recording.
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// Load resolves configuration from environment variables with the
// FAIRSIGHT_ prefix (FAIRSIGHT_API_URL maps to api.url, and so on).
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load plus an optional YAML file layered under the
// environment: file values lose to environment values.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("FAIRSIGHT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "FAIRSIGHT_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("api.url") {
		k.Set("api.url", "http://localhost:8000")
	}
	if !k.Exists("api.timeout.request") {
		k.Set("api.timeout.request", "10s")
	}
	if !k.Exists("api.timeout.upload") {
		k.Set("api.timeout.upload", "30s")
	}
	if !k.Exists("server.port") {
		k.Set("server.port", 8000)
	}
	if !k.Exists("history.path") {
		k.Set("history.path", "fairsight.db")
	}
	if !k.Exists("log.level") {
		k.Set("log.level", "info")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
