// Package config loads the formwork configuration file.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Designer  DesignerConfig  `mapstructure:"designer" yaml:"designer"`
	Templates TemplatesConfig `mapstructure:"templates" yaml:"templates"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Autosave  bool            `mapstructure:"autosave" yaml:"autosave"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// StorageConfig selects the DefinitionStore. Driver is memory, file or redis.
type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
	Format string `mapstructure:"format" yaml:"format"`

	// EncryptionKey is a base64 AES-256 key. When set, forms are stored encrypted.
	EncryptionKey string   `mapstructure:"encryption_key" yaml:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
	// Redact lists regular expressions; matching property keys are masked on save.
	Redact []string `mapstructure:"redact" yaml:"redact"`
}

// Keys decodes the encryption keys. It returns a nil active key when encryption is off.
func (s StorageConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	decode := func(k string) ([]byte, error) {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("invalid config: encryption key is not base64: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("invalid config: encryption key must be 32 bytes, got %d", len(key))
		}
		return key, nil
	}
	if active, err = decode(s.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for _, k := range s.FallbackKeys {
		key, err := decode(k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

type DesignerConfig struct {
	GridSize        float64 `mapstructure:"grid_size" yaml:"grid_size"`
	Snap            bool    `mapstructure:"snap" yaml:"snap"`
	CanvasWidth     float64 `mapstructure:"canvas_width" yaml:"canvas_width"`
	CanvasHeight    float64 `mapstructure:"canvas_height" yaml:"canvas_height"`
	Zoom            float64 `mapstructure:"zoom" yaml:"zoom"`
	DuplicateOffset float64 `mapstructure:"duplicate_offset" yaml:"duplicate_offset"`
	// SchemaFile is an optional JSON file of per-kind property type overrides.
	SchemaFile string `mapstructure:"schema_file" yaml:"schema_file"`
}

type TemplatesConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080", ShutdownTimeout: 5 * time.Second},
		Storage:  StorageConfig{Driver: "file", Path: ".formwork/forms", Format: "json"},
		Redis:    RedisConfig{Addr: "localhost:6379", Prefix: "formwork:form:", LockTTL: 30 * time.Second},
		Designer: DesignerConfig{GridSize: 10, CanvasWidth: 800, CanvasHeight: 600, Zoom: 1, DuplicateOffset: 20},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		return cfg, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no adapter can honor.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("invalid config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Storage.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("invalid config: unknown storage format %q", c.Storage.Format)
	}
	if _, _, err := c.Storage.Keys(); err != nil {
		return err
	}
	if c.Designer.GridSize < 0 {
		return fmt.Errorf("invalid config: negative grid size")
	}
	return nil
}

// LogLevel maps the configured level name to a slog level. Unknown names mean info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
