package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the mediascribe server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Whisper  WhisperConfig
	Summary  SummaryConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
	Feed     FeedConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// WhisperConfig points at the external speech-to-text HTTP service.
type WhisperConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SummaryConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	OpenAI           OpenAIConfig
	Ollama           OllamaConfig
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

// StorageConfig names the directories the pipeline works in. UploadDir holds
// submitted source files, WatchDir is scanned for dropped-in media, AudioDir
// holds per-job temporary audio artifacts.
type StorageConfig struct {
	UploadDir  string
	WatchDir   string
	AudioDir   string
	FFmpegPath string
}

type PipelineConfig struct {
	MaxWorkers   int
	PollInterval time.Duration
	ScanInterval time.Duration
}

type FeedConfig struct {
	BaseURL string
}

var validProviders = map[string]bool{
	"openai": true,
	"ollama": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("MEDIASCRIBE_PORT", 8080),
			Env:  envString("MEDIASCRIBE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Whisper: WhisperConfig{
			BaseURL: os.Getenv("WHISPER_BASE_URL"),
			Timeout: envDuration("WHISPER_TIMEOUT", 30*time.Minute),
		},
		Summary: SummaryConfig{
			Provider:         os.Getenv("SUMMARY_PROVIDER"),
			InferenceTimeout: envDurationSecs("SUMMARY_TIMEOUT_SECS", 60*time.Second),
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
		},
		Storage: StorageConfig{
			UploadDir:  envString("UPLOAD_DIR", "import/uploads"),
			WatchDir:   envString("WATCH_DIR", "import"),
			AudioDir:   envString("AUDIO_DIR", "import/audio"),
			FFmpegPath: envString("FFMPEG_PATH", "ffmpeg"),
		},
		Pipeline: PipelineConfig{
			MaxWorkers:   envInt("MAX_WORKERS", 2),
			PollInterval: envDuration("POLL_INTERVAL", 5*time.Second),
			ScanInterval: envDuration("SCAN_INTERVAL", 300*time.Second),
		},
		Feed: FeedConfig{
			BaseURL: envString("FEED_BASE_URL", "http://localhost:8080"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Whisper.BaseURL == "" {
		return fmt.Errorf("WHISPER_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Whisper.BaseURL, "http://") && !strings.HasPrefix(c.Whisper.BaseURL, "https://") {
		return fmt.Errorf("WHISPER_BASE_URL must start with http:// or https://, got %q", c.Whisper.BaseURL)
	}

	if c.Summary.Provider == "" {
		return fmt.Errorf("SUMMARY_PROVIDER is required")
	}
	if !validProviders[c.Summary.Provider] {
		return fmt.Errorf("SUMMARY_PROVIDER must be one of openai, ollama, mock; got %q", c.Summary.Provider)
	}
	if c.Summary.Provider == "openai" && c.Summary.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when SUMMARY_PROVIDER is openai")
	}

	if c.Pipeline.MaxWorkers < 1 {
		return fmt.Errorf("MAX_WORKERS must be at least 1, got %d", c.Pipeline.MaxWorkers)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
