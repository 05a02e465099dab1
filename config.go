package colsel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var configValidate = validator.New()

// Config is the file form of the engine options.
//
//	dir: /var/lib/colsel/imprints
//	log_level: info
//	memory_limit_bytes: 1073741824
//	background_workers: 2
type Config struct {
	// Dir holds persisted imprint files. Empty keeps indexes in memory.
	Dir string `yaml:"dir"`

	// LogLevel is one of debug, info, warn, error. Empty disables logging.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogFormat is text (the default) or json.
	LogFormat string `yaml:"log_format" validate:"omitempty,oneof=text json"`

	MemoryLimitBytes   int64  `yaml:"memory_limit_bytes" validate:"gte=0"`
	BackgroundWorkers  int64  `yaml:"background_workers" validate:"gte=0,lte=256"`
	IOLimitBytesPerSec int64  `yaml:"io_limit_bytes_per_sec" validate:"gte=0"`
	ImprintCacheBytes  int64  `yaml:"imprint_cache_bytes" validate:"gte=0"`
	HashThreshold      int32  `yaml:"hash_threshold" validate:"gte=0"`
	SampleThreshold    int    `yaml:"sample_threshold" validate:"gte=0"`
	Seed               uint64 `yaml:"seed"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates a YAML configuration. Unknown keys are
// rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse config: %w", ErrInvalidArgument, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: config: %w", ErrInvalidArgument, err)
	}
	return nil
}

// Options converts the configuration into engine options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithDir(c.Dir),
		WithMemoryLimit(c.MemoryLimitBytes),
		WithBackgroundWorkers(c.BackgroundWorkers),
		WithIOLimit(c.IOLimitBytesPerSec),
		WithImprintCacheBytes(c.ImprintCacheBytes),
		WithHashThreshold(c.HashThreshold),
		WithSampleThreshold(c.SampleThreshold),
		WithSeed(c.Seed),
	}
	if c.LogLevel != "" {
		opts = append(opts, WithLogger(c.logger()))
	}
	return opts
}

func (c *Config) logger() *Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel)))
	if c.LogFormat == "json" {
		return NewJSONLogger(level)
	}
	return NewTextLogger(level)
}
