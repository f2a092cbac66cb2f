package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimezone is the zone stamped on every resolved date context.
const DefaultTimezone = "Africa/Lagos"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Tracing     TracingConfig     `yaml:"tracing"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	CORS        CORSConfig        `yaml:"cors"`
	DateContext DateContextConfig `yaml:"date_context"`
	LLM         LLMConfig         `yaml:"llm"`
	MCP         MCPConfig         `yaml:"mcp"`
	Environment string            `yaml:"environment"`
}

type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

type RateLimitConfig struct {
	PublicPerMinute   int      `yaml:"public_per_minute"`
	MCPPerMinute      int      `yaml:"mcp_per_minute"`
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

// CORSConfig lists browser origins allowed to call the API. AllowAllOrigins is
// meant for local development only.
type CORSConfig struct {
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// MCPConfig configures the MCP tool server.
type MCPConfig struct {
	Transport string `yaml:"transport"` // stdio|sse|http
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Name      string `yaml:"name"`
}

// DateContextConfig is read once at startup. Nothing a request carries can change it.
type DateContextConfig struct {
	Timezone string `yaml:"timezone"`
}

// LLMConfig configures the model pass of the primary date extractor.
// An empty APIKey disables the model; the regex path still works.
type LLMConfig struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	// RuleConfidence is the minimum confidence at which a rule hit skips the model.
	RuleConfidence float64 `yaml:"rule_confidence"`
}

// Enabled reports whether model calls can be made.
func (c LLMConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Defaults returns the configuration used when neither a file nor the
// environment sets a value.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			MaxBodyBytes: 64 << 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "stdout",
			ServiceName:  "tripline-server",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: 120,
			MCPPerMinute:    60,
		},
		DateContext: DateContextConfig{
			Timezone: DefaultTimezone,
		},
		LLM: LLMConfig{
			Model:          "claude-3-5-haiku-latest",
			MaxTokens:      512,
			Timeout:        8 * time.Second,
			RuleConfidence: 0.8,
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Host:      "127.0.0.1",
			Port:      8090,
			Name:      "tripline-datecontext",
		},
		Environment: "development",
	}
}

// Load reads configuration from environment variables on top of the defaults.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads an optional YAML file, then applies environment overrides.
// Environment variables win over file values.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.MaxBodyBytes = int64(getEnvInt("SERVER_MAX_BODY_BYTES", int(cfg.Server.MaxBodyBytes)))

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)

	cfg.RateLimit.PublicPerMinute = getEnvInt("RATE_LIMIT_PUBLIC", cfg.RateLimit.PublicPerMinute)
	cfg.RateLimit.MCPPerMinute = getEnvInt("RATE_LIMIT_MCP", cfg.RateLimit.MCPPerMinute)
	if cidrs := os.Getenv("TRUSTED_PROXY_CIDRS"); cidrs != "" {
		cfg.RateLimit.TrustedProxyCIDRs = splitList(cidrs)
	}

	cfg.CORS.AllowAllOrigins = getEnvBool("CORS_ALLOW_ALL", cfg.CORS.AllowAllOrigins)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}

	cfg.DateContext.Timezone = getEnv("DATECONTEXT_TIMEZONE", cfg.DateContext.Timezone)

	cfg.LLM.APIKey = getEnv("ANTHROPIC_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.MaxTokens = getEnvInt("LLM_MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.LLM.Timeout = getEnvDuration("LLM_TIMEOUT", cfg.LLM.Timeout)
	cfg.LLM.RuleConfidence = getEnvFloat("LLM_RULE_CONFIDENCE", cfg.LLM.RuleConfidence)

	cfg.MCP.Transport = strings.ToLower(getEnv("MCP_TRANSPORT", cfg.MCP.Transport))
	cfg.MCP.Host = getEnv("MCP_HOST", cfg.MCP.Host)
	cfg.MCP.Port = getEnvInt("MCP_PORT", cfg.MCP.Port)
	cfg.MCP.Name = getEnv("MCP_SERVER_NAME", cfg.MCP.Name)

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("SERVER_MAX_BODY_BYTES must be positive"))
	}
	if !strings.EqualFold(c.Logging.Format, "json") && !strings.EqualFold(c.Logging.Format, "console") {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("TRACING_SAMPLE_RATE must be between 0.0 and 1.0"))
	}
	if _, err := time.LoadLocation(c.DateContext.Timezone); err != nil || c.DateContext.Timezone == "" {
		errs = append(errs, fmt.Errorf("DATECONTEXT_TIMEZONE %q is not a valid IANA zone", c.DateContext.Timezone))
	}
	if c.LLM.Enabled() {
		if c.LLM.Model == "" {
			errs = append(errs, fmt.Errorf("LLM_MODEL is required when ANTHROPIC_API_KEY is set"))
		}
		if c.LLM.MaxTokens <= 0 {
			errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive"))
		}
		if c.LLM.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive"))
		}
	}
	switch c.MCP.Transport {
	case "stdio", "sse", "http":
	default:
		errs = append(errs, fmt.Errorf("MCP_TRANSPORT must be stdio, sse, or http, got %q", c.MCP.Transport))
	}
	if c.Environment == "production" && c.CORS.AllowAllOrigins {
		errs = append(errs, fmt.Errorf("CORS_ALLOW_ALL must not be set in production"))
	}
	if c.LLM.RuleConfidence < 0 || c.LLM.RuleConfidence > 1 {
		errs = append(errs, fmt.Errorf("LLM_RULE_CONFIDENCE must be between 0.0 and 1.0"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
