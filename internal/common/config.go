package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Jobs        JobsConfig      `toml:"jobs"`
	Fetch       FetchConfig     `toml:"fetch"`
	Capture     CaptureConfig   `toml:"capture"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	GitHub      GitHubConfig    `toml:"github"`
	Retention   RetentionConfig `toml:"retention"`
	Logging     LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// StorageConfig holds the filesystem layout for uploads and generated
// artifacts. Job state itself lives in memory only.
type StorageConfig struct {
	UploadDir     string `toml:"upload_dir"`      // Directory for uploaded input files
	OutputDir     string `toml:"output_dir"`      // Directory for generated artifacts
	MaxUploadSize int64  `toml:"max_upload_size"` // Max upload size in bytes
}

// JobsConfig controls the job runner
type JobsConfig struct {
	Concurrency   int    `toml:"concurrency"`    // Max jobs executing at once
	JobTimeout    string `toml:"job_timeout"`    // Per-job execution timeout, e.g. "10m"
	EstimatesFile string `toml:"estimates_file"` // Optional YAML file overriding per-tool time estimates
}

// FetchConfig controls outbound HTTP fetching for URL-based tools
type FetchConfig struct {
	UserAgent      string        `toml:"user_agent"`      // User agent for outbound requests
	RequestTimeout time.Duration `toml:"request_timeout"` // HTTP request timeout
	MaxBodySize    int           `toml:"max_body_size"`   // Max response body size in bytes
	RateLimit      string        `toml:"rate_limit"`      // Minimum interval between requests, e.g. "500ms"
}

// CaptureConfig controls headless browser screenshot capture
type CaptureConfig struct {
	Headless       bool          `toml:"headless"`        // Run Chrome headless
	Timeout        time.Duration `toml:"timeout"`         // Capture timeout per page
	ViewportWidth  int           `toml:"viewport_width"`  // Browser viewport width
	ViewportHeight int           `toml:"viewport_height"` // Browser viewport height
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for AI operations
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between requests
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for AI operations
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between requests
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the provider used by the AI tools
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude"
}

// GitHubConfig contains GitHub API configuration for the repo report tool
type GitHubConfig struct {
	Token string `toml:"token"` // Personal access token, optional for public repos
}

// RetentionConfig controls the artifact sweeper that removes old
// uploads and outputs on a cron schedule
type RetentionConfig struct {
	Enabled  bool   `toml:"enabled"`  // Enable the retention sweeper
	Schedule string `toml:"schedule"` // Cron schedule (with seconds field)
	MaxAge   string `toml:"max_age"`  // Delete files older than this, e.g. "24h"
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in artifex.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			UploadDir:     "./data/uploads",
			OutputDir:     "./data/outputs",
			MaxUploadSize: 100 * 1024 * 1024, // 100MB, matches the upload endpoint contract
		},
		Jobs: JobsConfig{
			Concurrency: 8,     // Bounded pool keeps heavy converters from starving the host
			JobTimeout:  "10m", // Generous ceiling; OCR-class tools run minutes
		},
		Fetch: FetchConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout: 30 * time.Second,
			MaxBodySize:    10 * 1024 * 1024, // 10MB
			RateLimit:      "500ms",
		},
		Capture: CaptureConfig{
			Headless:       true,
			Timeout:        45 * time.Second,
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key
			Model:       "gemini-3-flash-preview",
			Timeout:     "5m",
			RateLimit:   "4s", // 15 RPM free tier
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			RateLimit:   "1s",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		GitHub: GitHubConfig{
			Token: "",
		},
		Retention: RetentionConfig{
			Enabled:  true,
			Schedule: "0 0 * * * *", // hourly (cron with seconds)
			MaxAge:   "24h",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05.000",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files. Later files
// override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ARTIFEX_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("ARTIFEX_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ARTIFEX_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if uploadDir := os.Getenv("ARTIFEX_UPLOAD_DIR"); uploadDir != "" {
		config.Storage.UploadDir = uploadDir
	}
	if outputDir := os.Getenv("ARTIFEX_OUTPUT_DIR"); outputDir != "" {
		config.Storage.OutputDir = outputDir
	}
	if maxUpload := os.Getenv("ARTIFEX_MAX_UPLOAD_SIZE"); maxUpload != "" {
		if m, err := strconv.ParseInt(maxUpload, 10, 64); err == nil {
			config.Storage.MaxUploadSize = m
		}
	}

	// Jobs configuration
	if concurrency := os.Getenv("ARTIFEX_JOBS_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil && c > 0 {
			config.Jobs.Concurrency = c
		}
	}
	if timeout := os.Getenv("ARTIFEX_JOBS_TIMEOUT"); timeout != "" {
		config.Jobs.JobTimeout = timeout
	}
	if estimates := os.Getenv("ARTIFEX_JOBS_ESTIMATES_FILE"); estimates != "" {
		config.Jobs.EstimatesFile = estimates
	}

	// Fetch configuration
	if userAgent := os.Getenv("ARTIFEX_FETCH_USER_AGENT"); userAgent != "" {
		config.Fetch.UserAgent = userAgent
	}
	if requestTimeout := os.Getenv("ARTIFEX_FETCH_REQUEST_TIMEOUT"); requestTimeout != "" {
		if rt, err := time.ParseDuration(requestTimeout); err == nil {
			config.Fetch.RequestTimeout = rt
		}
	}
	if rateLimit := os.Getenv("ARTIFEX_FETCH_RATE_LIMIT"); rateLimit != "" {
		config.Fetch.RateLimit = rateLimit
	}

	// AI provider configuration
	if apiKey := os.Getenv("ARTIFEX_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("ARTIFEX_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if apiKey := os.Getenv("ARTIFEX_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	} else if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("ARTIFEX_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if provider := os.Getenv("ARTIFEX_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}

	// GitHub configuration
	if token := os.Getenv("ARTIFEX_GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	} else if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	}

	// Retention configuration
	if enabled := os.Getenv("ARTIFEX_RETENTION_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Retention.Enabled = e
		}
	}
	if schedule := os.Getenv("ARTIFEX_RETENTION_SCHEDULE"); schedule != "" {
		config.Retention.Schedule = schedule
	}
	if maxAge := os.Getenv("ARTIFEX_RETENTION_MAX_AGE"); maxAge != "" {
		config.Retention.MaxAge = maxAge
	}

	// Logging configuration
	if level := os.Getenv("ARTIFEX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("ARTIFEX_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("ARTIFEX_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// Command-line flags have highest priority.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ValidateRetentionSchedule validates the sweeper cron expression
func ValidateRetentionSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// JobTimeoutDuration returns the parsed per-job timeout with a safe fallback
func (c *Config) JobTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Jobs.JobTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// AllowTestURLs returns true if test URLs (localhost, 127.0.0.1, etc.)
// are allowed. Test URLs are only allowed in development mode.
func (c *Config) AllowTestURLs() bool {
	return !c.IsProduction()
}
