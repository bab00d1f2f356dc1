package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration is matched by every configuration failure.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a missing or invalid setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

type Config struct {
	// OpenRouter generation
	OpenRouterAPIKey  string
	OpenRouterURL     string
	OpenRouterModel   string
	OpenRouterReferer string

	GenerationTimeout time.Duration
	MaxRetries        int
	ContextTokens     int

	// Pipeline
	SyllabusPath string
	OutputPath   string
	Title        string
	Concurrency  int

	// PDF
	PDFFallbackPdftotext bool

	// Server mode
	Port           string
	APIKey         string
	WorkerCount    int
	MaxQueueSize   int
	MaxUploadBytes int64
	JobTTL         time.Duration
	DataDir        string

	// Browser agent
	BrowserRemoteURL string
	BrowserTimeout   time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	// A missing .env is normal; variables may come from the environment.
	_ = godotenv.Load()

	cfg := Config{
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterURL:     envOr("OPENROUTER_API_URL", "https://openrouter.ai/api/v1/chat/completions"),
		OpenRouterModel:   envOr("OPENROUTER_MODEL", "qwen/qwen-vl-plus:free"),
		OpenRouterReferer: envOr("OPENROUTER_REFERER", "http://localhost:3000"),

		GenerationTimeout: envDuration("GENERATION_TIMEOUT", 120*time.Second),
		MaxRetries:        envInt("GENERATION_MAX_RETRIES", 5),
		ContextTokens:     envInt("CONTEXT_TOKENS", 2000),

		SyllabusPath: os.Getenv("SYLLABUS_PATH"),
		OutputPath:   envOr("OUTPUT_PATH", "Generated_Book.docx"),
		Concurrency:  envInt("CONCURRENCY", 4),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		Port:           envOr("PORT", "8090"),
		APIKey:         os.Getenv("SYLLABOOK_API_KEY"),
		WorkerCount:    envInt("WORKER_COUNT", 2),
		MaxQueueSize:   envInt("MAX_QUEUE_SIZE", 50),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB
		JobTTL:         envDuration("JOB_TTL", 24*time.Hour),
		DataDir:        envOr("DATA_DIR", filepath.Join(os.TempDir(), "syllabook")),

		BrowserRemoteURL: os.Getenv("BROWSER_REMOTE_URL"),
		BrowserTimeout:   envDuration("BROWSER_TIMEOUT", 30*time.Second),
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = 120 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.ContextTokens <= 0 {
		c.ContextTokens = 2000
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 50
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 20971520
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 24 * time.Hour
	}
	if c.BrowserTimeout <= 0 {
		c.BrowserTimeout = 30 * time.Second
	}
}

// Validate checks what a one-shot build needs before any stage runs.
func (c Config) Validate() error {
	if c.OpenRouterAPIKey == "" {
		return &ConfigurationError{Field: "OPENROUTER_API_KEY", Reason: "is required"}
	}
	if strings.TrimSpace(c.SyllabusPath) == "" {
		return &ConfigurationError{Field: "syllabus", Reason: "input path is required"}
	}
	info, err := os.Stat(c.SyllabusPath)
	if err != nil {
		return &ConfigurationError{Field: "syllabus", Reason: err.Error()}
	}
	if info.IsDir() {
		return &ConfigurationError{Field: "syllabus", Reason: c.SyllabusPath + " is a directory"}
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return &ConfigurationError{Field: "output", Reason: "output path is required"}
	}
	return nil
}

// ValidateServe checks what server mode needs.
func (c Config) ValidateServe() error {
	if c.OpenRouterAPIKey == "" {
		return &ConfigurationError{Field: "OPENROUTER_API_KEY", Reason: "is required"}
	}
	if c.APIKey == "" {
		return &ConfigurationError{Field: "SYLLABOOK_API_KEY", Reason: "is required"}
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
