package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ServerConfig holds the HTTP listener settings of the serve command.
type ServerConfig struct {
	// Host is empty to listen on every interface.
	Host string
	// Port accepts both "8000" and ":8000".
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// ShutdownTimeout bounds how long in-flight aggregations may finish after SIGTERM.
	ShutdownTimeout time.Duration
}

// LoadServerConfigFromEnv reads the SERVER_* variables. The write timeout is
// long because a statistics request walks every repository of the principal.
func LoadServerConfigFromEnv() ServerConfig {
	return ServerConfig{
		Host:            GetEnv("SERVER_HOST", ""),
		Port:            GetEnv("SERVER_PORT", ":8000"),
		ReadTimeout:     GetEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    GetEnvDuration("SERVER_WRITE_TIMEOUT", 2*time.Minute),
		IdleTimeout:     GetEnvDuration("SERVER_IDLE_TIMEOUT", 2*time.Minute),
		ShutdownTimeout: GetEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// GetAddress returns the listen address for http.Server.
func (c ServerConfig) GetAddress() string {
	port := strings.TrimPrefix(c.Port, ":")
	if c.Host == "" {
		return ":" + port
	}
	return net.JoinHostPort(c.Host, port)
}

// Validate requires every timeout to be positive.
func (c ServerConfig) Validate() error {
	var errs []error
	for name, d := range map[string]time.Duration{
		"SERVER_READ_TIMEOUT":     c.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    c.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":     c.IdleTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": c.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be greater than 0, got %s", name, d))
		}
	}
	return errors.Join(errs...)
}
