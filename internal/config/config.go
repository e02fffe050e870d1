// Package config reads the strata.yaml settings file.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when no --config is given.
const DefaultPath = "strata.yaml"

// Config is the root of the settings file.
type Config struct {
	Log    LogConfig    `yaml:"log" json:"log"`
	Loader LoaderConfig `yaml:"loader" json:"loader"`
	Server ServerConfig `yaml:"server" json:"server"`
	Cache  CacheConfig  `yaml:"cache" json:"cache"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // text or json
}

type LoaderConfig struct {
	BestEffort  bool   `yaml:"best_effort" json:"best_effort"`
	ExternalURI string `yaml:"external_uri" json:"external_uri"`
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
	// MaxUploadBytes caps uploaded archives.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" json:"max_upload_bytes"`
	// MaxExpandedBytes caps an upload's decompressed size. Zero means 8x MaxUploadBytes.
	MaxExpandedBytes int64 `yaml:"max_expanded_bytes" json:"max_expanded_bytes"`
}

type CacheConfig struct {
	Backend string      `yaml:"backend" json:"backend"` // memory or redis
	Redis   RedisConfig `yaml:"redis" json:"redis"`
	// EncryptionKey is a base64 AES-256 key; when set, cached entries are encrypted.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
	// FallbackKeys are older keys still accepted for reading.
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys"`
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (c CacheConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if c.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(c.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("cache.encryption_key: %w", err)
	}
	for i, k := range c.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("cache.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Port: 8080, MaxUploadBytes: 256 << 20},
		Cache: CacheConfig{
			Backend: "memory",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "strata:doc:"},
		},
	}
}

// Load reads a YAML or JSON settings file over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated values and ranges.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if _, _, err := c.Cache.Keys(); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
