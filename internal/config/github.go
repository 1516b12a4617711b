package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// GitHubConfig holds the OAuth application and API client settings.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// Token is the fallback principal used when a request carries no session.
	Token string
	// DefaultOrg is the organization served by /orgs/teams.
	DefaultOrg string
	// RateLimitMaxSleep caps a single secondary rate limit wait.
	RateLimitMaxSleep time.Duration
}

// LoadGitHubConfigFromEnv loads GitHub configuration from environment variables.
func LoadGitHubConfigFromEnv() GitHubConfig {
	return GitHubConfig{
		ClientID:          GetEnv("GITHUB_CLIENT_ID", ""),
		ClientSecret:      GetEnv("GITHUB_CLIENT_SECRET", ""),
		RedirectURL:       GetEnv("GITHUB_REDIRECT_URL", "http://localhost:8000/auth"),
		Scopes:            GetEnvList("GITHUB_SCOPES", []string{"user:email", "repo"}),
		Token:             GetEnv("GITHUB_TOKEN", ""),
		DefaultOrg:        GetEnv("DEFAULT_ORG", ""),
		RateLimitMaxSleep: GetEnvDuration("RATE_LIMIT_MAX_SLEEP", time.Hour),
	}
}

// Validate validates GitHub configuration.
func (c GitHubConfig) Validate() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, errors.New("GITHUB_CLIENT_ID is required"))
	}
	if c.ClientSecret == "" {
		errs = append(errs, errors.New("GITHUB_CLIENT_SECRET is required"))
	}
	if c.DefaultOrg == "" {
		errs = append(errs, errors.New("DEFAULT_ORG is required"))
	}
	if c.RedirectURL == "" {
		errs = append(errs, errors.New("GITHUB_REDIRECT_URL must not be empty"))
	}
	if c.RateLimitMaxSleep < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX_SLEEP must not be negative, got %s", c.RateLimitMaxSleep))
	}
	return errors.Join(errs...)
}

// SessionConfig holds the session settings.
type SessionConfig struct {
	// SecretKey signs the session id cookie.
	SecretKey string
	// Secure marks the cookie https-only. It follows the scheme of the OAuth redirect URL.
	Secure bool
}

// LoadSessionConfigFromEnv loads session configuration from environment variables.
func LoadSessionConfigFromEnv() SessionConfig {
	return SessionConfig{
		SecretKey: GetEnv("SECRET_KEY", ""),
		Secure:    strings.HasPrefix(GetEnv("GITHUB_REDIRECT_URL", ""), "https://"),
	}
}

// Validate validates session configuration.
func (c SessionConfig) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	return nil
}

// AggregationConfig tunes the repository fan-out.
type AggregationConfig struct {
	Concurrency int
	BotPrefixes []string
}

// LoadAggregationConfigFromEnv loads aggregation configuration from environment variables.
func LoadAggregationConfigFromEnv() AggregationConfig {
	return AggregationConfig{
		Concurrency: GetEnvInt("AGGREGATION_CONCURRENCY", 4),
		BotPrefixes: GetEnvList("BOT_LOGIN_PREFIXES", []string{"dependabot"}),
	}
}

// Validate validates aggregation configuration.
func (c AggregationConfig) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("AGGREGATION_CONCURRENCY must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
