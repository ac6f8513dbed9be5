package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/pkg/icron"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Config holds all application configuration.
//
// Environment Variables:
// Watch:
// - WATCH_DIRECTORY: directory scanned for videos (default: /videos)
// - SCAN_INTERVAL: seconds between scans (default: 60)
// - SCAN_CRON: cron expression overriding SCAN_INTERVAL (optional)
// - RECURSIVE: walk subdirectories (default: true)
// - IGNORE_EXISTING: seed the first scan without processing (default: false)
//
// Translation:
// - API_KEY: translation service key (required, GEMINI_API_KEY accepted)
// - TARGET_LANGUAGE: BCP 47 tag of the output language (default: en)
// - TRANSLATION_PROVIDER: gemini or openai (default: gemini)
// - TRANSLATION_MODEL: model name (default: gemini-2.5-flash)
// - TRANSLATION_API_URL: endpoint override, required for openai
// - TRANSLATION_TIMEOUT: seconds per request (default: 120)
// - MAX_ATTEMPTS: attempts per request on quota errors (default: 5)
// - BACKOFF_BASE / BACKOFF_MAX: backoff seconds (default: 10 / 60)
// - BATCH_SIZE: cues per request (default: 10)
// - TRANSLATION_MAX_TOKENS / TRANSLATION_TEMPERATURE: openai sampling, 0 omits (default: 0 / 0)
//
// Media:
// - FFPROBE_PATH / FFMPEG_PATH: binaries (default: ffprobe / ffmpeg)
// - PROBE_TIMEOUT / EXTRACT_TIMEOUT: seconds (default: 30 / 300)
// - TEMP_DIR: raw subtitle directory (default: os.TempDir())
// - MAX_SUBTITLE_SIZE: bytes, 0 disables the guard (default: 512000)
//
// Runtime:
// - WORKERS: concurrent video pipelines (default: 1)
// - HISTORY_DB: SQLite journal path (optional)
// - LOCK_FILE: daemon lock (default: <TEMP_DIR>/subtrans.lock)
// - LOG_LEVEL: debug, info, warn, error (default: info)
// - SETTINGS_FILE: TOML, YAML or JSON overrides (optional)
type Config struct {
	Watch     WatchConfig     `json:"watch"`
	Translate TranslateConfig `json:"translate"`
	Media     MediaConfig     `json:"media"`
	Runtime   RuntimeConfig   `json:"runtime"`

	keyOptional bool
}

type WatchConfig struct {
	Directory      string        `json:"directory"`
	Interval       time.Duration `json:"interval"`
	CronExpr       string        `json:"cron_expr"`
	Recursive      bool          `json:"recursive"`
	IgnoreExisting bool          `json:"ignore_existing"`
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type TranslateConfig struct {
	Provider       string        `json:"provider"`
	APIKey         string        `json:"-"`
	APIURL         string        `json:"api_url"`
	Model          string        `json:"model"`
	TargetLanguage language.Tag  `json:"target_language"`
	Timeout        time.Duration `json:"timeout"`
	MaxAttempts    int           `json:"max_attempts"`
	BackoffBase    time.Duration `json:"backoff_base"`
	BackoffMax     time.Duration `json:"backoff_max"`
	BatchSize      int           `json:"batch_size"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
}

type MediaConfig struct {
	FFprobePath     string        `json:"ffprobe_path"`
	FFmpegPath      string        `json:"ffmpeg_path"`
	ProbeTimeout    time.Duration `json:"probe_timeout"`
	ExtractTimeout  time.Duration `json:"extract_timeout"`
	TempDir         string        `json:"temp_dir"`
	MaxSubtitleSize int64         `json:"max_subtitle_size"`
}

type RuntimeConfig struct {
	Workers   int    `json:"workers"`
	HistoryDB string `json:"history_db"`
	LockFile  string `json:"lock_file"`
	LogLevel  string `json:"log_level"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a Config from environment variables and options.
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Watch: WatchConfig{
			Directory:      getEnvString("WATCH_DIRECTORY", "/videos"),
			Interval:       getEnvSeconds("SCAN_INTERVAL", 60),
			CronExpr:       getEnvString("SCAN_CRON", ""),
			Recursive:      getEnvBool("RECURSIVE", true),
			IgnoreExisting: getEnvBool("IGNORE_EXISTING", false),
		},
		Translate: TranslateConfig{
			Provider:    strings.ToLower(getEnvString("TRANSLATION_PROVIDER", ProviderGemini)),
			APIKey:      getEnvString("API_KEY", getEnvString("GEMINI_API_KEY", "")),
			APIURL:      getEnvString("TRANSLATION_API_URL", ""),
			Model:       getEnvString("TRANSLATION_MODEL", "gemini-2.5-flash"),
			Timeout:     getEnvSeconds("TRANSLATION_TIMEOUT", 120),
			MaxAttempts: getEnvInt("MAX_ATTEMPTS", 5),
			BackoffBase: getEnvSeconds("BACKOFF_BASE", 10),
			BackoffMax:  getEnvSeconds("BACKOFF_MAX", 60),
			BatchSize:   getEnvInt("BATCH_SIZE", 10),
			MaxTokens:   getEnvInt("TRANSLATION_MAX_TOKENS", 0),
			Temperature: getEnvFloat("TRANSLATION_TEMPERATURE", 0),
		},
		Media: MediaConfig{
			FFprobePath:     getEnvString("FFPROBE_PATH", "ffprobe"),
			FFmpegPath:      getEnvString("FFMPEG_PATH", "ffmpeg"),
			ProbeTimeout:    getEnvSeconds("PROBE_TIMEOUT", 30),
			ExtractTimeout:  getEnvSeconds("EXTRACT_TIMEOUT", 300),
			TempDir:         getEnvString("TEMP_DIR", os.TempDir()),
			MaxSubtitleSize: int64(getEnvInt("MAX_SUBTITLE_SIZE", 512000)),
		},
		Runtime: RuntimeConfig{
			Workers:   getEnvInt("WORKERS", 1),
			HistoryDB: getEnvString("HISTORY_DB", ""),
			LockFile:  getEnvString("LOCK_FILE", ""),
			LogLevel:  getEnvString("LOG_LEVEL", "info"),
		},
	}

	lang := getEnvString("TARGET_LANGUAGE", "en")
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindConfig, err, "invalid TARGET_LANGUAGE %q", lang)
	}
	config.Translate.TargetLanguage = tag

	for _, opt := range opts {
		opt(config)
	}

	if config.Runtime.LockFile == "" {
		config.Runtime.LockFile = filepath.Join(config.Media.TempDir, "subtrans.lock")
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Load reads .env, then the environment, then SETTINGS_FILE when set.
// Options are applied last.
func Load(opts ...Option) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	if path := SettingsFilePath(); path != "" {
		settings, err := LoadSettingsFile(path)
		if err != nil {
			return nil, err
		}
		opts = append([]Option{WithSettings(settings)}, opts...)
	}

	return NewFromEnv(opts...)
}

// LoadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return apperr.Wrapf(apperr.KindConfig, err, "load %s", path)
	}
	return nil
}

func WithWatchDirectory(dir string) Option {
	return func(c *Config) {
		c.Watch.Directory = dir
	}
}

func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.Translate.APIKey = key
	}
}

// WithoutAPIKey accepts a missing API key, for commands that never call the
// translation service.
func WithoutAPIKey() Option {
	return func(c *Config) {
		c.keyOptional = true
	}
}

func WithTargetLanguage(tag language.Tag) Option {
	return func(c *Config) {
		c.Translate.TargetLanguage = tag
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.Media.TempDir = dir
	}
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if strings.TrimSpace(c.Translate.APIKey) == "" && !c.keyOptional {
		return apperr.New(apperr.KindConfig, "API_KEY is required")
	}
	if strings.TrimSpace(c.Watch.Directory) == "" {
		return apperr.New(apperr.KindConfig, "WATCH_DIRECTORY is required")
	}
	if c.Watch.Interval <= 0 {
		return apperr.New(apperr.KindConfig, "SCAN_INTERVAL must be positive")
	}
	if _, err := icron.NewSchedule(c.Watch.Interval, c.Watch.CronExpr); err != nil {
		return apperr.Wrap(apperr.KindConfig, "invalid SCAN_CRON", err)
	}
	if c.Translate.TargetLanguage == language.Und {
		return apperr.New(apperr.KindConfig, "TARGET_LANGUAGE is required")
	}

	switch c.Translate.Provider {
	case ProviderGemini:
	case ProviderOpenAI:
		if strings.TrimSpace(c.Translate.APIURL) == "" {
			return apperr.New(apperr.KindConfig, "TRANSLATION_API_URL is required for the openai provider")
		}
	default:
		return apperr.Newf(apperr.KindConfig, "unknown TRANSLATION_PROVIDER %q", c.Translate.Provider)
	}

	if strings.TrimSpace(c.Translate.Model) == "" {
		return apperr.New(apperr.KindConfig, "TRANSLATION_MODEL is required")
	}
	if c.Translate.MaxAttempts < 1 {
		return apperr.New(apperr.KindConfig, "MAX_ATTEMPTS must be at least 1")
	}
	if c.Translate.BackoffBase < 0 || c.Translate.BackoffMax < c.Translate.BackoffBase {
		return apperr.New(apperr.KindConfig, "BACKOFF_MAX must not be below BACKOFF_BASE")
	}
	if c.Translate.BatchSize < 1 {
		return apperr.New(apperr.KindConfig, "BATCH_SIZE must be at least 1")
	}
	if c.Translate.MaxTokens < 0 {
		return apperr.New(apperr.KindConfig, "TRANSLATION_MAX_TOKENS must not be negative")
	}
	if c.Translate.Temperature < 0 || c.Translate.Temperature > 2 {
		return apperr.New(apperr.KindConfig, "TRANSLATION_TEMPERATURE must be between 0 and 2")
	}
	if c.Translate.Timeout <= 0 || c.Media.ProbeTimeout <= 0 || c.Media.ExtractTimeout <= 0 {
		return apperr.New(apperr.KindConfig, "timeouts must be positive")
	}
	if c.Media.MaxSubtitleSize < 0 {
		return apperr.New(apperr.KindConfig, "MAX_SUBTITLE_SIZE must not be negative")
	}
	if c.Runtime.Workers < 1 {
		return apperr.New(apperr.KindConfig, "WORKERS must be at least 1")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("watch=%s interval=%s cron=%q provider=%s model=%s target=%s batch=%d workers=%d",
		c.Watch.Directory, c.Watch.Interval, c.Watch.CronExpr,
		c.Translate.Provider, c.Translate.Model, c.Translate.TargetLanguage,
		c.Translate.BatchSize, c.Runtime.Workers)
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
