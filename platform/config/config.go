// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SearchConfig provides settings for offer aggregation.
type SearchConfig interface {
	GetGatewayTimeout() time.Duration
	GetGatewayConcurrency() int
	GetSearchRecordLimit() int
}

// MouserConfig provides settings for the Mouser gateway.
type MouserConfig interface {
	GetMouserAPIKey() string
	IsMouserEnabled() bool
}

// DigiKeyConfig provides settings for the DigiKey gateway.
type DigiKeyConfig interface {
	GetDigiKeyClientID() string
	GetDigiKeyClientSecret() string
	IsDigiKeyEnabled() bool
}

// OctopartConfig provides settings for the Octopart/Nexar gateway.
type OctopartConfig interface {
	GetOctopartClientID() string
	GetOctopartClientSecret() string
	IsOctopartEnabled() bool
}

// GenAIConfig provides settings for the optional LLM strategy.
type GenAIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsGenAIEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	GatewayTimeout       time.Duration
	GatewayConcurrency   int
	SearchRecordLimit    int
	DefaultCurrency      string
	MouserAPIKey         string
	DigiKeyClientID      string
	DigiKeyClientSecret  string
	OctopartClientID     string
	OctopartClientSecret string
	GeminiAPIKey         string
	GeminiModel          string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SearchConfig implementation
func (c *Config) GetGatewayTimeout() time.Duration { return c.GatewayTimeout }
func (c *Config) GetGatewayConcurrency() int       { return c.GatewayConcurrency }
func (c *Config) GetSearchRecordLimit() int        { return c.SearchRecordLimit }

// MouserConfig implementation
func (c *Config) GetMouserAPIKey() string { return c.MouserAPIKey }
func (c *Config) IsMouserEnabled() bool   { return c.MouserAPIKey != "" }

// DigiKeyConfig implementation
func (c *Config) GetDigiKeyClientID() string     { return c.DigiKeyClientID }
func (c *Config) GetDigiKeyClientSecret() string { return c.DigiKeyClientSecret }
func (c *Config) IsDigiKeyEnabled() bool {
	return c.DigiKeyClientID != "" && c.DigiKeyClientSecret != ""
}

// OctopartConfig implementation
func (c *Config) GetOctopartClientID() string     { return c.OctopartClientID }
func (c *Config) GetOctopartClientSecret() string { return c.OctopartClientSecret }
func (c *Config) IsOctopartEnabled() bool {
	return c.OctopartClientID != "" && c.OctopartClientSecret != ""
}

// GenAIConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsGenAIEnabled() bool    { return c.GeminiAPIKey != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		GatewayTimeout:       mustDuration(getEnv("GATEWAY_TIMEOUT", "30s")),
		GatewayConcurrency:   mustInt(getEnv("GATEWAY_CONCURRENCY", "8")),
		SearchRecordLimit:    mustInt(getEnv("SEARCH_RECORD_LIMIT", "10")),
		DefaultCurrency:      getEnv("DEFAULT_CURRENCY", "USD"),
		MouserAPIKey:         getEnv("MOUSER_API_KEY", ""),
		DigiKeyClientID:      getEnv("DIGIKEY_CLIENT_ID", ""),
		DigiKeyClientSecret:  getEnv("DIGIKEY_CLIENT_SECRET", ""),
		OctopartClientID:     getEnv("OCTOPART_CLIENT_ID", ""),
		OctopartClientSecret: getEnv("OCTOPART_CLIENT_SECRET", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}

	if cfg.GatewayTimeout <= 0 {
		return nil, fmt.Errorf("GATEWAY_TIMEOUT must be a positive duration")
	}
	if cfg.GatewayConcurrency <= 0 {
		return nil, fmt.Errorf("GATEWAY_CONCURRENCY must be a positive integer")
	}
	if cfg.SearchRecordLimit <= 0 {
		return nil, fmt.Errorf("SEARCH_RECORD_LIMIT must be a positive integer")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
