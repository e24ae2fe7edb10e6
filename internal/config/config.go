package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Config holds all application configuration
// Includes LLM, transcription, storage and HTTP configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default: https://openrouter.ai/api/v1)
// - LLM_MODEL: Model name to use (default: openai/gpt-3.5-turbo)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 8000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.7)
// - LLM_TIMEOUT: Request timeout in seconds (default: 30)
// - LLM_SITE_URL: Site URL for HTTP referer header (optional)
// - LLM_APP_NAME: Application name for X-Title header (optional)
//
// Transcription Configuration:
// - STT_API_KEY: API key for the speech-to-text provider (required)
// - STT_API_URL: Speech-to-text endpoint URL
// - STT_MODEL: Speech-to-text model id (default: scribe_v2)
// - STT_TIMEOUT: Upload timeout in minutes (default: 30)
//
// Storage Configuration:
// - DATA_DIR: Directory for the SQLite database and settings file (default: /app/data)
// - UPLOAD_DIR: Watched directory for dropped lecture media (default: /uploads)
//
// Translate Configuration:
// - TARGET_LANGUAGES: Comma-separated BCP-47 tags translated by default (default: empty)
// - CRON_EXPR: Sweep schedule (default: 0 * * * *)
//
// HTTP Configuration:
// - HTTP_ADDR: Listen address (default: :8080)
// - STATIC_DIR: Optional bundled UI directory

type Config struct {
	// LLM Configuration
	LLM LLMConfig `json:"llm"`

	// Transcription Configuration
	Transcribe TranscribeConfig `json:"transcribe"`

	// Storage Configuration
	Storage StorageConfig `json:"storage"`

	// Translate Configuration
	Translate TranslateConfig `json:"translate"`

	// HTTP Configuration
	HTTP HTTPConfig `json:"http"`
}

// LLMConfig holds the configuration for LLM client
// Supports any OpenAI-compatible provider
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
	SiteURL     string  `json:"site_url"`
	AppName     string  `json:"app_name"`
}

// TranscribeConfig holds the configuration for the speech-to-text client
type TranscribeConfig struct {
	APIKey         string `json:"api_key"`
	APIURL         string `json:"api_url"`
	Model          string `json:"model"`
	TimeoutMinutes int    `json:"timeout_minutes"`
}

// StorageConfig holds the data and upload directory configuration
type StorageConfig struct {
	DataDir   string `json:"data_dir"`
	UploadDir string `json:"upload_dir"`
}

func (c StorageConfig) DatabasePath() string {
	return c.DataDir + "/videos.db"
}

type TranslateConfig struct {
	TargetLanguages []language.Tag `json:"target_languages"`
	CronExpr        string         `json:"cron_expr"`
}

type HTTPConfig struct {
	Addr      string `json:"addr"`
	StaticDir string `json:"static_dir"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		LLM: LLMConfig{
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnvString("LLM_MODEL", "openai/gpt-3.5-turbo"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvInt("LLM_TIMEOUT", 30),
			SiteURL:     getEnvString("LLM_SITE_URL", ""),
			AppName:     getEnvString("LLM_APP_NAME", ""),
		},
		Transcribe: TranscribeConfig{
			APIKey:         getEnvString("STT_API_KEY", ""),
			APIURL:         getEnvString("STT_API_URL", "https://api.elevenlabs.io/v1/speech-to-text"),
			Model:          getEnvString("STT_MODEL", "scribe_v2"),
			TimeoutMinutes: getEnvInt("STT_TIMEOUT", 30),
		},
		Storage: StorageConfig{
			DataDir:   getEnvString("DATA_DIR", "/app/data"),
			UploadDir: getEnvString("UPLOAD_DIR", "/uploads"),
		},
		Translate: TranslateConfig{
			TargetLanguages: parseLanguageList(getEnvString("TARGET_LANGUAGES", "")),
			CronExpr:        getEnvString("CRON_EXPR", "0 * * * *"),
		},
		HTTP: HTTPConfig{
			Addr:      getEnvString("HTTP_ADDR", ":8080"),
			StaticDir: getEnvString("STATIC_DIR", ""),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Transcribe.APIKey == "" {
		return fmt.Errorf("STT_API_KEY is required")
	}
	return nil
}

// parseLanguageList parses a comma-separated list of BCP-47 tags,
// skipping entries that do not parse.
func parseLanguageList(raw string) []language.Tag {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	ret := make([]language.Tag, 0)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if tag, err := language.Parse(item); err == nil {
			ret = append(ret, tag)
		}
	}
	return ret
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
