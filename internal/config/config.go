// Package config provides configuration loading for pdfproc.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spherical/pdfproc/internal/args"
	"github.com/spherical/pdfproc/internal/classify"
	"github.com/spherical/pdfproc/internal/domain"
	"github.com/spherical/pdfproc/internal/pdf"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PDFPROC_"

// Config holds all configuration for pdfproc.
type Config struct {
	Tools         args.Tools          `yaml:"tools"`
	Process       ProcessConfig       `yaml:"process"`
	Render        RenderConfig        `yaml:"render"`
	OCR           OCRConfig           `yaml:"ocr"`
	Patterns      classify.Patterns   `yaml:"patterns"`
	Observability ObservabilityConfig `yaml:"observability"`
	// TempDir holds staged inputs and render output. Empty means os.TempDir().
	TempDir string `yaml:"temp_dir"`
}

// ProcessConfig controls how tools are spawned.
type ProcessConfig struct {
	// DefaultTimeout applies when a call sets no Timeout. Zero disables it.
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	// KillGrace is how long a killed process may hold its pipes open.
	KillGrace      time.Duration `yaml:"kill_grace"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	InputMode      string        `yaml:"input_mode"` // file or stdin
}

// RenderConfig holds defaults for Render calls that leave fields unset.
type RenderConfig struct {
	DPI    int    `yaml:"dpi"`
	Format string `yaml:"format"`
}

// OCRConfig configures the optional Tesseract collaborator.
type OCRConfig struct {
	Languages string `yaml:"languages"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json or console
	LogStderr bool   `yaml:"log_stderr"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
	}

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Process: ProcessConfig{
			DefaultTimeout: 2 * time.Minute,
			KillGrace:      2 * time.Second,
			MaxConcurrency: 4,
			InputMode:      string(args.InputFile),
		},
		Render: RenderConfig{
			DPI:    150,
			Format: string(domain.FormatPNG),
		},
		OCR: OCRConfig{
			Languages: "eng",
		},
		Patterns: classify.DefaultPatterns(),
		Observability: ObservabilityConfig{
			LogLevel:  "warn",
			LogFormat: "console",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Process.DefaultTimeout < 0 {
		return domain.ConfigError(fmt.Sprintf("default_timeout must not be negative: %s", c.Process.DefaultTimeout), nil)
	}
	if c.Process.KillGrace < 0 {
		return domain.ConfigError(fmt.Sprintf("kill_grace must not be negative: %s", c.Process.KillGrace), nil)
	}
	if c.Process.MaxConcurrency < 1 {
		return domain.ConfigError(fmt.Sprintf("max_concurrency must be at least 1: %d", c.Process.MaxConcurrency), nil)
	}
	if _, err := args.ParseInputMode(c.Process.InputMode); err != nil {
		return err
	}
	if c.Render.DPI < 1 || c.Render.DPI > pdf.MaxDPI {
		return domain.ConfigError(fmt.Sprintf("render dpi must be between 1 and %d: %d", pdf.MaxDPI, c.Render.DPI), nil)
	}
	if _, err := domain.ParseOutputFormat(c.Render.Format); err != nil {
		return domain.ConfigError("render format", err)
	}
	switch strings.ToLower(c.Observability.LogFormat) {
	case "", "json", "console":
	default:
		return domain.ConfigError(fmt.Sprintf("invalid log format: %s", c.Observability.LogFormat), nil)
	}
	if c.TempDir != "" {
		info, err := os.Stat(c.TempDir)
		if err != nil {
			return domain.ConfigError("temp_dir", err)
		}
		if !info.IsDir() {
			return domain.ConfigError(fmt.Sprintf("temp_dir is not a directory: %s", c.TempDir), nil)
		}
	}
	return nil
}

// InputMode returns the parsed input mode. Call after Validate.
func (c *Config) InputMode() args.InputMode {
	mode, _ := args.ParseInputMode(c.Process.InputMode)
	return mode
}

// RenderFormat returns the parsed default render format. Call after Validate.
func (c *Config) RenderFormat() domain.OutputFormat {
	f, err := domain.ParseOutputFormat(c.Render.Format)
	if err != nil {
		return domain.FormatPNG
	}
	return f
}

type lookupFunc func(string) (string, bool)

// applyEnvOverrides applies PDFPROC_* environment variables to cfg.
func applyEnvOverrides(cfg *Config, lookup lookupFunc) error {
	env := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := env("PDFINFO"); ok {
		cfg.Tools.Info = v
	}
	if v, ok := env("PDFTOTEXT"); ok {
		cfg.Tools.Text = v
	}
	if v, ok := env("PDFTOCAIRO"); ok {
		cfg.Tools.Render = v
	}
	if v, ok := env("TEMP_DIR"); ok {
		cfg.TempDir = v
	}
	if v, ok := env("INPUT_MODE"); ok {
		cfg.Process.InputMode = v
	}
	if v, ok := env("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return domain.ConfigError(EnvPrefix+"TIMEOUT", err)
		}
		cfg.Process.DefaultTimeout = d
	}
	if v, ok := env("KILL_GRACE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return domain.ConfigError(EnvPrefix+"KILL_GRACE", err)
		}
		cfg.Process.KillGrace = d
	}
	if v, ok := env("MAX_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError(EnvPrefix+"MAX_CONCURRENCY", err)
		}
		cfg.Process.MaxConcurrency = n
	}
	if v, ok := env("DPI"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError(EnvPrefix+"DPI", err)
		}
		cfg.Render.DPI = n
	}
	if v, ok := env("FORMAT"); ok {
		cfg.Render.Format = v
	}
	if v, ok := env("OCR_LANGUAGES"); ok {
		cfg.OCR.Languages = v
	}
	if v, ok := env("LOG_LEVEL"); ok {
		cfg.Observability.LogLevel = v
	}
	if v, ok := env("LOG_FORMAT"); ok {
		cfg.Observability.LogFormat = v
	}
	if v, ok := env("LOG_STDERR"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.ConfigError(EnvPrefix+"LOG_STDERR", err)
		}
		cfg.Observability.LogStderr = b
	}
	return nil
}
