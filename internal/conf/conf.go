package conf

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/usecase"
	"github.com/DevRickLin/wa-gemini-bridge/internal/data"
	"github.com/DevRickLin/wa-gemini-bridge/internal/server"
)

// Config represents application configuration
type Config struct {
	// Gemini configuration
	Gemini GeminiConfig

	// WhatsApp configuration
	WhatsApp WhatsAppConfig

	// Trigger keyword (overrides the replies file when set)
	TriggerKeyword string

	// Reconnect policy
	Reconnect ReconnectConfig

	// Replies configuration (loaded from YAML)
	RepliesPath string
	Replies     *RepliesConfig

	// Log level: debug, info, warn, error
	LogLevel string

	// Debug mode
	Debug bool
}

// GeminiConfig contains Gemini API configuration
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	Backend    string // rest, openai, genai
	Model      string // Pinned model, skips discovery
	FastMarker string
	Timeout    time.Duration // 0 means none
}

// WhatsAppConfig contains WhatsApp session configuration
type WhatsAppConfig struct {
	AuthDir string // Credential store directory
}

// ReconnectConfig contains the reconnect policy values
type ReconnectConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	authDir := os.Getenv("AUTH_DIR")
	if authDir == "" {
		authDir = "auth_info"
	}

	backend := strings.ToLower(os.Getenv("GEMINI_BACKEND"))
	if backend == "" {
		backend = data.BackendREST
	}

	fastMarker := os.Getenv("GEMINI_FAST_MARKER")
	if fastMarker == "" {
		fastMarker = domain.DefaultFastMarker
	}

	logLevel := os.Getenv("LOG_LEVEL")
	debug := os.Getenv("DEBUG") == "true"
	if logLevel == "" {
		logLevel = "info"
		if debug {
			logLevel = "debug"
		}
	}

	return &Config{
		Gemini: GeminiConfig{
			APIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			BaseURL:    os.Getenv("GEMINI_BASE_URL"),
			Backend:    backend,
			Model:      os.Getenv("GEMINI_MODEL"),
			FastMarker: fastMarker,
			Timeout:    time.Duration(envInt("GEMINI_TIMEOUT_SECONDS", 0)) * time.Second,
		},
		WhatsApp: WhatsAppConfig{
			AuthDir: authDir,
		},
		TriggerKeyword: os.Getenv("TRIGGER_KEYWORD"),
		Reconnect: ReconnectConfig{
			MaxAttempts: envInt("RECONNECT_MAX_ATTEMPTS", 10),
			BaseDelay:   time.Duration(envInt("RECONNECT_BASE_DELAY_MS", 1000)) * time.Millisecond,
			MaxDelay:    time.Duration(envInt("RECONNECT_MAX_DELAY_MS", 60000)) * time.Millisecond,
		},
		RepliesPath: os.Getenv("REPLIES_CONFIG_PATH"),
		LogLevel:    logLevel,
		Debug:       debug,
	}
}

// LoadReplies loads the replies file into c.Replies and returns the path used
func (c *Config) LoadReplies() (string, error) {
	replies, loaded, err := LoadRepliesConfig(c.RepliesPath)
	if err != nil {
		return "", err
	}
	c.Replies = replies
	return loaded, nil
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// Keyword returns the effective trigger keyword
func (c *Config) Keyword() string {
	if c.TriggerKeyword != "" {
		return c.TriggerKeyword
	}
	if c.Replies != nil && c.Replies.Trigger.Keyword != "" {
		return c.Replies.Trigger.Keyword
	}
	return usecase.DefaultTriggerKeyword
}

// ToSelectorConfig converts to selector configuration
func (c *Config) ToSelectorConfig() usecase.SelectorConfig {
	return usecase.SelectorConfig{
		FastMarker:  c.Gemini.FastMarker,
		PinnedModel: c.Gemini.Model,
	}
}

// ToDataOptions converts to repository options
func (c *Config) ToDataOptions() data.Options {
	return data.Options{
		APIKey:  c.Gemini.APIKey,
		BaseURL: c.Gemini.BaseURL,
		Backend: c.Gemini.Backend,
		Timeout: c.Gemini.Timeout,
	}
}

// ToBackoffPolicy converts to the reconnect policy
func (c *ReconnectConfig) ToBackoffPolicy() server.BackoffPolicy {
	policy := server.DefaultBackoffPolicy()
	policy.MaxRetries = c.MaxAttempts
	if c.BaseDelay > 0 {
		policy.InitialInterval = c.BaseDelay
	}
	if c.MaxDelay > 0 {
		policy.MaxInterval = c.MaxDelay
	}
	return policy
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return &ConfigError{Field: "GEMINI_API_KEY", Message: "required"}
	}
	switch c.Gemini.Backend {
	case data.BackendREST, data.BackendOpenAI, data.BackendGenAI:
	default:
		return &ConfigError{Field: "GEMINI_BACKEND", Message: "must be one of rest, openai, genai"}
	}
	if c.WhatsApp.AuthDir == "" {
		return &ConfigError{Field: "AUTH_DIR", Message: "required"}
	}
	if c.Reconnect.MaxAttempts < 0 {
		return &ConfigError{Field: "RECONNECT_MAX_ATTEMPTS", Message: "must be >= 0"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
