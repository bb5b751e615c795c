// Package config loads process configuration from the environment with an
// optional YAML overlay, and watches the runtime limits file for changes.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store providers.
const (
	StoreMemory   = "memory"
	StoreSupabase = "supabase"
	StoreDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`
	IsLambda      bool   `yaml:"is_lambda"`

	// Storage
	StoreProvider string `yaml:"store_provider"`
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`

	// Supabase
	SupabaseURL       string `yaml:"supabase_url"`
	SupabaseKey       string `yaml:"supabase_key"`
	SupabaseJWTSecret string `yaml:"supabase_jwt_secret"`

	// Events
	EventBusName string `yaml:"event_bus_name"`

	// LLM
	LLMProvider string        `yaml:"llm_provider"` // openai | mock
	LLMBaseURL  string        `yaml:"llm_base_url"`
	LLMModel    string        `yaml:"llm_model"`
	LLMAPIKey   string        `yaml:"llm_api_key"`
	LLMTimeout  time.Duration `yaml:"llm_timeout"`

	// Sharing
	ShareBaseURL string `yaml:"share_base_url"`

	// Observability
	LogLevel        string `yaml:"log_level"`
	TracingEndpoint string `yaml:"tracing_endpoint"`
	ServiceName     string `yaml:"service_name"`

	// CORS
	AllowedOrigins []string `yaml:"allowed_origins"`

	// LimitsFile is watched for hot-reloadable limits. Empty disables watching.
	LimitsFile string `yaml:"limits_file"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableEvents  bool `yaml:"enable_events"`
}

// LoadConfig loads configuration from environment variables, then applies
// the YAML file named by CONFIG_FILE on top when set.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		IsLambda:      getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),

		StoreProvider: getEnv("STORE_PROVIDER", StoreMemory),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "mindflow")),

		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseKey:       getEnv("SUPABASE_SERVICE_ROLE_KEY", getEnv("SUPABASE_ANON_KEY", "")),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),

		EventBusName: getEnv("EVENT_BUS_NAME", "mindflow-events"),

		LLMProvider: getEnv("LLM_PROVIDER", "openai"),
		LLMBaseURL:  getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4"),
		LLMAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMTimeout:  time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,

		ShareBaseURL: getEnv("SHARE_BASE_URL", "http://localhost:3000"),

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		TracingEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName:     getEnv("SERVICE_NAME", "mindflow-api"),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		LimitsFile:     getEnv("LIMITS_FILE", ""),

		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableEvents:  getEnvBool("ENABLE_EVENTS", false),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// overlayFile decodes a YAML file onto cfg. Keys absent from the file keep
// their environment values.
func (c *Config) overlayFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreProvider {
	case StoreMemory:
	case StoreSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for the supabase store")
		}
	case StoreDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb store")
		}
	default:
		return fmt.Errorf("unknown STORE_PROVIDER %q", c.StoreProvider)
	}

	switch c.LLMProvider {
	case "openai", "mock":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive")
	}

	if c.EnableEvents && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
	}

	if c.Environment == "production" {
		if c.SupabaseJWTSecret == "" && c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET or SUPABASE_URL is required in production")
		}
		if c.StoreProvider == StoreMemory {
			return fmt.Errorf("the memory store is not allowed in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
