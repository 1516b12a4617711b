package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects how the service writes its logs.
type LoggerConfig struct {
	Level  string
	Format string
	// Output is stdout, stderr or a file path opened by zap.
	Output string
}

// LoadLoggerConfigFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT.
func LoadLoggerConfigFromEnv() LoggerConfig {
	return LoggerConfig{
		Level:  GetEnv("LOG_LEVEL", "info"),
		Format: GetEnv("LOG_FORMAT", "json"),
		Output: GetEnv("LOG_OUTPUT", "stdout"),
	}
}

// CLILoggerConfig is used by commands that print a report on stdout: logs go
// to stderr in console format so the report stays machine readable.
func CLILoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  GetEnv("LOG_LEVEL", "warn"),
		Format: "console",
		Output: "stderr",
	}
}

// Validate checks the level against zap's names and the format.
func (c LoggerConfig) Validate() error {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil || level > zapcore.ErrorLevel {
		return fmt.Errorf("invalid log level %q: want debug, info, warn or error", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format %q: want json or console", c.Format)
	}
	if c.Output == "" {
		return fmt.Errorf("LOG_OUTPUT must not be empty")
	}
	return nil
}

// IsProduction reports whether zap's production preset applies: JSON
// without debug output.
func (c LoggerConfig) IsProduction() bool {
	return c.Format == "json" && c.Level != "debug"
}
