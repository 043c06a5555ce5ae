package config

import (
	"github.com/sirupsen/logrus"

	"image-processing-engine/internal/core"
)

// LogConfig selects the log level, format and optional rotated log file.
type LogConfig struct {
	Level      string `yaml:"level,omitempty"`
	Format     string `yaml:"format,omitempty"` // "text" or "json"
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// DefaultLogConfig mirrors the CLI defaults: info level, JSON output, no file.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "json",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// Merge returns c with empty fields filled from def.
func (c LogConfig) Merge(def LogConfig) LogConfig {
	if c.Level == "" {
		c.Level = def.Level
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	if c.File == "" {
		c.File = def.File
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = def.MaxSizeMB
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = def.MaxBackups
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = def.MaxAgeDays
	}
	return c
}

// Validate checks the level and format names.
func (c LogConfig) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return core.InvalidParameterf("log level: %v", err)
	}
	if c.Format != "text" && c.Format != "json" {
		return core.InvalidParameterf("log format must be text or json, got %q", c.Format)
	}
	return nil
}
