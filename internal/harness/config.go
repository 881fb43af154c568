// Package harness wires the stepper packages into the reference commands:
// environment configuration, agent profiles, backends and demo actions.
package harness

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the command configuration loaded from environment variables.
type Config struct {
	// Server
	Port     string
	LogLevel string // debug, info, warn, error

	// Provider selection
	Provider string
	Model    string

	// API Keys
	AnthropicKey string
	OpenAIKey    string
	GoogleKey    string

	// Loop
	MaxSteps    int
	Timeout     time.Duration
	MaxAttempts int

	// Profile is the path of the YAML agent profile. Empty uses DefaultProfile.
	Profile string

	// DB is the SQLite path for step history. Empty keeps history in memory.
	DB string

	// MCPCommand starts an MCP server whose tools become actions.
	MCPCommand string
	MCPArgs    []string

	// OTLPEndpoint enables tracing when set.
	OTLPEndpoint string

	DemoActions bool
}

// LoadConfig loads configuration from environment variables and validates it.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	cfg := LoadEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv reads the configuration without validating it, for commands that
// only inspect stored runs.
func LoadEnv() *Config {
	godotenv.Load()

	return &Config{
		Port:         getEnvOrDefault("STEPPER_PORT", "8000"),
		LogLevel:     getEnvOrDefault("STEPPER_LOG_LEVEL", "info"),
		Provider:     os.Getenv("STEPPER_PROVIDER"),
		Model:        os.Getenv("STEPPER_MODEL"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		GoogleKey:    os.Getenv("GOOGLE_API_KEY"),
		MaxSteps:     getEnvIntOrDefault("STEPPER_MAX_STEPS", 10),
		Timeout:      getEnvDurationOrDefault("STEPPER_TIMEOUT", 2*time.Minute),
		MaxAttempts:  getEnvIntOrDefault("STEPPER_RETRY_ATTEMPTS", 5),
		Profile:      os.Getenv("STEPPER_PROFILE"),
		DB:           os.Getenv("STEPPER_DB"),
		MCPCommand:   os.Getenv("STEPPER_MCP_COMMAND"),
		MCPArgs:      strings.Fields(os.Getenv("STEPPER_MCP_ARGS")),
		OTLPEndpoint: os.Getenv("STEPPER_OTLP_ENDPOINT"),
		DemoActions:  getEnvBoolOrDefault("STEPPER_DEMO_ACTIONS", true),
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("STEPPER_PROVIDER is required (anthropic, openai, or google)")
	}

	switch c.Provider {
	case "anthropic":
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	case "google":
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for google provider")
		}
	default:
		return fmt.Errorf("unknown provider: %s (must be anthropic, openai, or google)", c.Provider)
	}

	if c.MaxSteps < 1 {
		return fmt.Errorf("STEPPER_MAX_STEPS must be positive, got %d", c.MaxSteps)
	}

	return nil
}

// Logger returns a text logger on stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
