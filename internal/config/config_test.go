package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
	"SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
	"GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "GITHUB_REDIRECT_URL", "GITHUB_SCOPES",
	"GITHUB_TOKEN", "DEFAULT_ORG", "RATE_LIMIT_MAX_SLEEP", "SECRET_KEY",
	"AGGREGATION_CONCURRENCY", "BOT_LOGIN_PREFIXES", "GIN_MODE",
}

// clearEnv blanks every variable the loader reads; GetEnv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: LoggerConfig{Level: "info", Format: "json", Output: "stdout"},
		GitHub: GitHubConfig{
			ClientID:          "id",
			ClientSecret:      "secret",
			RedirectURL:       "http://localhost:8000/auth",
			DefaultOrg:        "acme",
			RateLimitMaxSleep: time.Hour,
		},
		Session:     SessionConfig{SecretKey: "key"},
		Aggregation: AggregationConfig{Concurrency: 4, BotPrefixes: []string{"dependabot"}},
		GinMode:     "release",
	}
}

func TestLoadFromEnv_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg := LoadFromEnv()
	assert.Equal(t, ":8000", cfg.Server.Port)
	assert.Equal(t, 120*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "http://localhost:8000/auth", cfg.GitHub.RedirectURL)
	assert.Equal(t, []string{"user:email", "repo"}, cfg.GitHub.Scopes)
	assert.Equal(t, time.Hour, cfg.GitHub.RateLimitMaxSleep)
	assert.Equal(t, 4, cfg.Aggregation.Concurrency)
	assert.Equal(t, []string{"dependabot"}, cfg.Aggregation.BotPrefixes)
	assert.Empty(t, cfg.GitHub.Token)
}

func TestLoadFromEnv_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("GITHUB_CLIENT_ID", "client")
	t.Setenv("GITHUB_SCOPES", "read:org, repo ,")
	t.Setenv("DEFAULT_ORG", "acme")
	t.Setenv("AGGREGATION_CONCURRENCY", "8")
	t.Setenv("BOT_LOGIN_PREFIXES", "dependabot,renovate")
	t.Setenv("RATE_LIMIT_MAX_SLEEP", "5m")

	cfg := LoadFromEnv()
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, "client", cfg.GitHub.ClientID)
	assert.Equal(t, []string{"read:org", "repo"}, cfg.GitHub.Scopes)
	assert.Equal(t, "acme", cfg.GitHub.DefaultOrg)
	assert.Equal(t, 8, cfg.Aggregation.Concurrency)
	assert.Equal(t, []string{"dependabot", "renovate"}, cfg.Aggregation.BotPrefixes)
	assert.Equal(t, 5*time.Minute, cfg.GitHub.RateLimitMaxSleep)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:        "invalid server config",
			mutate:      func(c *Config) { c.Server.ReadTimeout = 0 },
			errContains: "server config validation failed",
		},
		{
			name:        "invalid logger config",
			mutate:      func(c *Config) { c.Logger.Level = "invalid" },
			errContains: "logger config validation failed",
		},
		{
			name:        "missing client id",
			mutate:      func(c *Config) { c.GitHub.ClientID = "" },
			errContains: "GITHUB_CLIENT_ID is required",
		},
		{
			name: "missing client secret and default org",
			mutate: func(c *Config) {
				c.GitHub.ClientSecret = ""
				c.GitHub.DefaultOrg = ""
			},
			errContains: "DEFAULT_ORG is required",
		},
		{
			name:        "missing secret key",
			mutate:      func(c *Config) { c.Session.SecretKey = "" },
			errContains: "SECRET_KEY is required",
		},
		{
			name:        "zero concurrency",
			mutate:      func(c *Config) { c.Aggregation.Concurrency = 0 },
			errContains: "AGGREGATION_CONCURRENCY",
		},
		{
			name:        "invalid gin mode",
			mutate:      func(c *Config) { c.GinMode = "invalid" },
			errContains: "invalid GIN_MODE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.errContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestServerConfig_GetAddress(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ServerConfig
		expected string
	}{
		{name: "port only", cfg: ServerConfig{Port: ":8000"}, expected: ":8000"},
		{name: "port without colon", cfg: ServerConfig{Port: "8000"}, expected: ":8000"},
		{name: "host and port", cfg: ServerConfig{Host: "127.0.0.1", Port: ":8000"}, expected: "127.0.0.1:8000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.GetAddress())
		})
	}
}

func TestLoggerConfig_IsProduction(t *testing.T) {
	assert.True(t, LoggerConfig{Level: "info", Format: "json"}.IsProduction())
	assert.False(t, LoggerConfig{Level: "debug", Format: "json"}.IsProduction())
	assert.False(t, LoggerConfig{Level: "info", Format: "console"}.IsProduction())
}

func TestLoadSessionConfigFromEnv_SecureFollowsRedirectScheme(t *testing.T) {
	tests := []struct {
		name        string
		redirectURL string
		expected    bool
	}{
		{name: "https", redirectURL: "https://insights.example.com/auth", expected: true},
		{name: "http", redirectURL: "http://localhost:8000/auth", expected: false},
		{name: "unset", redirectURL: "", expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SECRET_KEY", "key")
			t.Setenv("GITHUB_REDIRECT_URL", tt.redirectURL)

			cfg := LoadSessionConfigFromEnv()

			assert.Equal(t, "key", cfg.SecretKey)
			assert.Equal(t, tt.expected, cfg.Secure)
		})
	}
}

func TestLoggerConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         LoggerConfig
		errContains string
	}{
		{name: "json to stdout", cfg: LoggerConfig{Level: "info", Format: "json", Output: "stdout"}},
		{name: "console to file", cfg: LoggerConfig{Level: "warn", Format: "console", Output: "/var/log/insights.log"}},
		{name: "unknown level", cfg: LoggerConfig{Level: "loud", Format: "json", Output: "stdout"}, errContains: "invalid log level"},
		{name: "fatal is not allowed", cfg: LoggerConfig{Level: "fatal", Format: "json", Output: "stdout"}, errContains: "invalid log level"},
		{name: "unknown format", cfg: LoggerConfig{Level: "info", Format: "xml", Output: "stdout"}, errContains: "invalid log format"},
		{name: "empty output", cfg: LoggerConfig{Level: "info", Format: "json"}, errContains: "LOG_OUTPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			if tt.errContains == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestCLILoggerConfig(t *testing.T) {
	clearEnv(t)

	cfg := CLILoggerConfig()

	assert.Equal(t, LoggerConfig{Level: "warn", Format: "console", Output: "stderr"}, cfg)
	require.NoError(t, cfg.Validate())
}

func TestServerConfig_ValidateNamesEveryBadTimeout(t *testing.T) {
	err := ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second}.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_IDLE_TIMEOUT")
	assert.Contains(t, err.Error(), "SERVER_SHUTDOWN_TIMEOUT")
	assert.NotContains(t, err.Error(), "SERVER_READ_TIMEOUT")
}
