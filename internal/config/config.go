package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Model provider: anthropic, openai, or gemini.
	Provider string

	AnthropicAPIKey string
	AnthropicModel  string

	OpenAIAPIKey string
	OpenAIModel  string

	GeminiAPIKey string
	GeminiModel  string

	// Per-call behavior.
	RequestTimeout time.Duration
	MaxRetries     int
	MaxConcurrent  int

	// Editing behavior.
	Author          string
	EditAbstract    bool
	SkipShortLines  bool
	Instruction     string // inline instruction text (config file only)
	InstructionFile string

	// Serve mode.
	Port           string
	APIKey         string
	MaxUploadBytes int64
	MaxQueueSize   int
	WorkerCount    int
	JobTTL         time.Duration
}

func Load() Config {
	cfg := Config{
		Provider: envOr("REDLINE_PROVIDER", "anthropic"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  envOr("OPENAI_MODEL", "gpt-4o"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-2.0-flash"),

		RequestTimeout: envDuration("REQUEST_TIMEOUT", 120*time.Second),
		MaxRetries:     envInt("MAX_RETRIES", 2),
		MaxConcurrent:  envInt("MAX_CONCURRENT", 1),

		Author:          envOr("REDLINE_AUTHOR", "redline"),
		EditAbstract:    envBool("EDIT_ABSTRACT", false),
		SkipShortLines:  envBool("SKIP_SHORT_LINES", false),
		InstructionFile: os.Getenv("INSTRUCTION_FILE"),

		Port:           envOr("PORT", "8091"),
		APIKey:         os.Getenv("REDLINE_API_KEY"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		MaxQueueSize:   envInt("MAX_QUEUE_SIZE", 100),
		WorkerCount:    envInt("WORKER_COUNT", 2),
		JobTTL:         envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks that the selected provider has a credential.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.Provider)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q (want anthropic, openai, or gemini)", c.Provider)
	}
	return nil
}

// ValidateServe checks serve-mode requirements on top of Validate.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("REDLINE_API_KEY is required in serve mode")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
