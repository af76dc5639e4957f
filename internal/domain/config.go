package domain

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read at startup.
const (
	EnvAPIKey        = "MICROCMS_API_KEY"
	EnvServiceDomain = "MICROCMS_SERVICE_DOMAIN"
	EnvEndpoint      = "MICROCMS_ENDPOINT"
	EnvBaseURL       = "MICROCMS_BASE_URL" // optional
)

// Transport types.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Defaults announced to MCP clients.
const (
	DefaultServerName    = "microcms"
	DefaultServerVersion = "1.0.0"
	DefaultHTTPHost      = "localhost"
	DefaultHTTPPort      = 8080
)

// Config represents the server configuration.
// Server and transport settings may come from an optional YAML file; the
// microCMS credentials only ever come from the environment.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	MicroCMS  MicroCMSConfig  `yaml:"-"`
}

// ServerConfig defines the identity announced during the MCP handshake.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// TransportConfig defines transport settings.
// Specifies whether to use stdio or HTTP transport.
type TransportConfig struct {
	Type string     `yaml:"type"` // "stdio" or "http"
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http".
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// MicroCMSConfig holds the upstream credentials and the fixed search endpoint.
type MicroCMSConfig struct {
	APIKey        string
	ServiceDomain string
	Endpoint      string
	BaseURL       string
}

// APIBaseURL returns the root of the content API for the service domain,
// or the configured override.
func (m MicroCMSConfig) APIBaseURL() string {
	if m.BaseURL != "" {
		return strings.TrimRight(m.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.microcms.io/api/v1", m.ServiceDomain)
}

// LookupFunc retrieves an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadConfig reads configuration from the process environment and, when path
// is non-empty, from a YAML file.
func LoadConfig(path string) (*Config, error) {
	return LoadConfigWithEnv(path, os.LookupEnv)
}

// LoadConfigWithEnv is LoadConfig with an explicit environment lookup.
// Missing required environment variables are reported first, as a
// *ConfigurationError, in the order API key, service domain, endpoint.
func LoadConfigWithEnv(path string, lookup LookupFunc) (*Config, error) {
	microCMS, err := microCMSFromEnv(lookup)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if path != "" {
		if err := config.readFile(path); err != nil {
			return nil, err
		}
	}
	config.MicroCMS = microCMS
	config.applyDefaults()

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// microCMSFromEnv reads the upstream settings from the environment.
func microCMSFromEnv(lookup LookupFunc) (MicroCMSConfig, error) {
	var values []string
	for _, key := range []string{EnvAPIKey, EnvServiceDomain, EnvEndpoint} {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return MicroCMSConfig{}, &ConfigurationError{Variable: key}
		}
		values = append(values, strings.TrimSpace(value))
	}

	baseURL, _ := lookup(EnvBaseURL)

	return MicroCMSConfig{
		APIKey:        values[0],
		ServiceDomain: values[1],
		Endpoint:      values[2],
		BaseURL:       strings.TrimSpace(baseURL),
	}, nil
}

// readFile parses the YAML file at path into c.
func (c *Config) readFile(path string) error {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("configuration file not found: %s", path)
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
	}

	return nil
}

// applyDefaults fills in settings the file left empty.
func (c *Config) applyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = DefaultServerName
	}
	if c.Server.Version == "" {
		c.Server.Version = DefaultServerVersion
	}
	if c.Transport.Type == "" {
		c.Transport.Type = TransportStdio
	}
	if c.Transport.HTTP.Host == "" {
		c.Transport.HTTP.Host = DefaultHTTPHost
	}
	if c.Transport.HTTP.Port == 0 {
		c.Transport.HTTP.Port = DefaultHTTPPort
	}
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errors []string

	// Validate transport configuration
	if err := c.validateTransport(); err != nil {
		errors = append(errors, err.Error())
	}

	// Validate microCMS configuration
	if err := c.MicroCMS.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	var errors []string

	// Check transport type is specified
	if c.Transport.Type == "" {
		errors = append(errors, "transport type is required")
	} else if c.Transport.Type != TransportStdio && c.Transport.Type != TransportHTTP {
		errors = append(errors, fmt.Sprintf("invalid transport type '%s': must be 'stdio' or 'http'", c.Transport.Type))
	}

	// If HTTP transport, validate HTTP configuration
	if c.Transport.Type == TransportHTTP {
		if c.Transport.HTTP.Host == "" {
			errors = append(errors, "HTTP host is required when transport type is 'http'")
		}
		if c.Transport.HTTP.Port <= 0 || c.Transport.HTTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.Transport.HTTP.Port))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate checks the upstream settings.
func (m MicroCMSConfig) Validate() error {
	var errors []string

	if m.APIKey == "" {
		errors = append(errors, EnvAPIKey+" is required")
	}
	if m.ServiceDomain == "" {
		errors = append(errors, EnvServiceDomain+" is required")
	} else if strings.ContainsAny(m.ServiceDomain, "/:") {
		errors = append(errors, fmt.Sprintf("%s '%s' must be a bare service domain, not a URL", EnvServiceDomain, m.ServiceDomain))
	}
	if m.Endpoint == "" {
		errors = append(errors, EnvEndpoint+" is required")
	}

	// Validate URL format of the optional override
	if m.BaseURL != "" {
		parsedURL, err := url.Parse(m.BaseURL)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s is invalid: %v", EnvBaseURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("%s must use http or https scheme", EnvBaseURL))
		} else if parsedURL.Host == "" {
			errors = append(errors, fmt.Sprintf("%s must include a host", EnvBaseURL))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
