package domain

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when no --config flag is given.
	DefaultConfigPath = "config.yaml"
	// DefaultBaseURL is the public APIMatic API endpoint.
	DefaultBaseURL = "https://api.apimatic.io"
	// DefaultUserAgent identifies this server on every outgoing call.
	DefaultUserAgent = "apimatic-validator-mcp/1.0"
	// DefaultServiceName is reported to trace backends.
	DefaultServiceName = "apimatic-validator-mcp"
	// DefaultExportFormat asks the service for its own canonical format.
	DefaultExportFormat = "APIMATIC"

	// EnvAPIKey is the environment variable holding the APIMatic API key.
	EnvAPIKey = "APIMATIC_API_KEY"
	// EnvBaseURL optionally overrides apimatic.base_url.
	EnvBaseURL = "APIMATIC_BASE_URL"
)

// ErrMissingAPIKey is returned when no API key is configured anywhere.
var ErrMissingAPIKey = errors.New("Missing APIMATIC_API_KEY. Please set the environment variable.")

// Config represents the server configuration.
// This is the root configuration structure loaded from YAML files.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	APIMatic  APIMaticConfig  `yaml:"apimatic"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TransportConfig defines transport settings.
// Only the stdio transport is supported.
type TransportConfig struct {
	Type string `yaml:"type"`
}

// APIMaticConfig defines how the validation service is reached.
type APIMaticConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key,omitempty"` // Usually supplied through APIMATIC_API_KEY
	UserAgent    string `yaml:"user_agent,omitempty"`
	ExportFormat string `yaml:"export_format,omitempty"`
	// Timeout bounds a single validation call. Zero disables it, letting the
	// service decide how long a large specification takes.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LoggingConfig defines log output settings.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
}

// TelemetryConfig defines where traces are exported.
// An empty endpoint keeps the global no-op providers.
type TelemetryConfig struct {
	TracesEndpoint string `yaml:"traces_endpoint,omitempty"` // OTLP/HTTP, e.g. http://localhost:4318
	ServiceName    string `yaml:"service_name,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{Type: "stdio"},
		APIMatic: APIMaticConfig{
			BaseURL:      DefaultBaseURL,
			UserAgent:    DefaultUserAgent,
			ExportFormat: DefaultExportFormat,
		},
		Logging:   LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{ServiceName: DefaultServiceName},
	}
}

// LoadConfig reads configuration from a YAML file, then applies the .env file
// and environment overrides, and validates the result.
// A missing file is only an error when the path was given explicitly.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// Defaults plus environment are enough to run.
	case os.IsNotExist(err):
		return nil, fmt.Errorf("configuration file not found: %s", path)
	default:
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	// Variables already present in the environment take precedence over .env.
	_ = godotenv.Load()
	config.ApplyEnvironment(os.Getenv)
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ApplyEnvironment overrides file values with APIMATIC_* variables.
func (c *Config) ApplyEnvironment(getenv func(string) string) {
	if key := strings.TrimSpace(getenv(EnvAPIKey)); key != "" {
		c.APIMatic.APIKey = key
	}
	if baseURL := strings.TrimSpace(getenv(EnvBaseURL)); baseURL != "" {
		c.APIMatic.BaseURL = baseURL
	}
}

// applyDefaults fills fields a partial YAML file left empty.
func (c *Config) applyDefaults() {
	if c.Transport.Type == "" {
		c.Transport.Type = "stdio"
	}
	if c.APIMatic.BaseURL == "" {
		c.APIMatic.BaseURL = DefaultBaseURL
	}
	if c.APIMatic.UserAgent == "" {
		c.APIMatic.UserAgent = DefaultUserAgent
	}
	if c.APIMatic.ExportFormat == "" {
		c.APIMatic.ExportFormat = DefaultExportFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var problems []string

	if err := c.validateTransport(); err != nil {
		problems = append(problems, err.Error())
	}

	if err := c.APIMatic.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if err := c.Logging.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if err := c.Telemetry.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(problems, "; "))
	}

	return nil
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	if c.Transport.Type == "" {
		return fmt.Errorf("transport type is required")
	}
	if c.Transport.Type != "stdio" {
		return fmt.Errorf("invalid transport type '%s': must be 'stdio'", c.Transport.Type)
	}
	return nil
}

// Validate validates the APIMatic service settings.
// The API key is checked separately so that a missing key can be reported
// with its own message at startup.
func (ac *APIMaticConfig) Validate() error {
	var problems []string

	if ac.BaseURL == "" {
		problems = append(problems, "apimatic base_url is required")
	} else {
		parsedURL, err := url.Parse(ac.BaseURL)
		if err != nil {
			problems = append(problems, fmt.Sprintf("apimatic base_url is invalid: %v", err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			problems = append(problems, "apimatic base_url must use http or https scheme")
		} else if parsedURL.Host == "" {
			problems = append(problems, "apimatic base_url must include a host")
		}
	}

	if ac.Timeout < 0 {
		problems = append(problems, fmt.Sprintf("apimatic timeout %s must not be negative", ac.Timeout))
	}

	if strings.ContainsAny(ac.ExportFormat, " \t\r\n") {
		problems = append(problems, fmt.Sprintf("apimatic export_format '%s' must not contain whitespace", ac.ExportFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}

	return nil
}

// Validate validates the logging settings.
func (lc *LoggingConfig) Validate() error {
	switch strings.ToLower(lc.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", lc.Level)
	}
}

// Validate validates the telemetry settings.
func (tc *TelemetryConfig) Validate() error {
	if tc.TracesEndpoint == "" {
		return nil
	}
	parsedURL, err := url.Parse(tc.TracesEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry traces_endpoint is invalid: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("telemetry traces_endpoint must use http or https scheme")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("telemetry traces_endpoint must include a host")
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey when no key was configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIMatic.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}
