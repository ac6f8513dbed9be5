package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Settings mirrors the environment variables for a settings file. Zero
// values leave the environment value in place.
type Settings struct {
	WatchDirectory      string   `json:"watch_directory" toml:"watch_directory" yaml:"watch_directory"`
	ScanInterval        int      `json:"scan_interval" toml:"scan_interval" yaml:"scan_interval"`
	ScanCron            string   `json:"scan_cron" toml:"scan_cron" yaml:"scan_cron"`
	Recursive           *bool    `json:"recursive" toml:"recursive" yaml:"recursive"`
	IgnoreExisting      *bool    `json:"ignore_existing" toml:"ignore_existing" yaml:"ignore_existing"`
	APIKey              string   `json:"api_key" toml:"api_key" yaml:"api_key"`
	TargetLanguage      string   `json:"target_language" toml:"target_language" yaml:"target_language"`
	TranslationProvider string   `json:"translation_provider" toml:"translation_provider" yaml:"translation_provider"`
	TranslationModel    string   `json:"translation_model" toml:"translation_model" yaml:"translation_model"`
	TranslationAPIURL   string   `json:"translation_api_url" toml:"translation_api_url" yaml:"translation_api_url"`
	TranslationTimeout  int      `json:"translation_timeout" toml:"translation_timeout" yaml:"translation_timeout"`
	MaxAttempts         int      `json:"max_attempts" toml:"max_attempts" yaml:"max_attempts"`
	BackoffBase         int      `json:"backoff_base" toml:"backoff_base" yaml:"backoff_base"`
	BackoffMax          int      `json:"backoff_max" toml:"backoff_max" yaml:"backoff_max"`
	BatchSize           int      `json:"batch_size" toml:"batch_size" yaml:"batch_size"`
	MaxTokens           int      `json:"max_tokens" toml:"max_tokens" yaml:"max_tokens"`
	Temperature         *float64 `json:"temperature" toml:"temperature" yaml:"temperature"`
	MaxSubtitleSize     *int64   `json:"max_subtitle_size" toml:"max_subtitle_size" yaml:"max_subtitle_size"`
	Workers             int      `json:"workers" toml:"workers" yaml:"workers"`
	FFprobePath         string   `json:"ffprobe_path" toml:"ffprobe_path" yaml:"ffprobe_path"`
	FFmpegPath          string   `json:"ffmpeg_path" toml:"ffmpeg_path" yaml:"ffmpeg_path"`
	TempDir             string   `json:"temp_dir" toml:"temp_dir" yaml:"temp_dir"`
	HistoryDB           string   `json:"history_db" toml:"history_db" yaml:"history_db"`
	LockFile            string   `json:"lock_file" toml:"lock_file" yaml:"lock_file"`
	LogLevel            string   `json:"log_level" toml:"log_level" yaml:"log_level"`
}

func SettingsFilePath() string {
	return getEnvString("SETTINGS_FILE", "")
}

// LoadSettingsFile decodes path by extension: .toml, .yaml/.yml or .json.
func LoadSettingsFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, apperr.Wrapf(apperr.KindConfig, err, "read settings file %s", path)
	}

	var settings Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &settings)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &settings)
	case ".json":
		err = json.Unmarshal(data, &settings)
	default:
		return Settings{}, apperr.Newf(apperr.KindConfig, "unsupported settings file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return Settings{}, apperr.Wrapf(apperr.KindConfig, err, "invalid settings file %s", path)
	}
	return settings, nil
}

// WithSettings overlays non-zero settings onto the config.
func WithSettings(s Settings) Option {
	return func(c *Config) {
		setString(&c.Watch.Directory, s.WatchDirectory)
		setSeconds(&c.Watch.Interval, s.ScanInterval)
		setString(&c.Watch.CronExpr, s.ScanCron)
		if s.Recursive != nil {
			c.Watch.Recursive = *s.Recursive
		}
		if s.IgnoreExisting != nil {
			c.Watch.IgnoreExisting = *s.IgnoreExisting
		}

		setString(&c.Translate.APIKey, s.APIKey)
		if tag, err := language.Parse(s.TargetLanguage); err == nil {
			c.Translate.TargetLanguage = tag
		}
		if s.TranslationProvider != "" {
			c.Translate.Provider = strings.ToLower(s.TranslationProvider)
		}
		setString(&c.Translate.Model, s.TranslationModel)
		setString(&c.Translate.APIURL, s.TranslationAPIURL)
		setSeconds(&c.Translate.Timeout, s.TranslationTimeout)
		setInt(&c.Translate.MaxAttempts, s.MaxAttempts)
		setSeconds(&c.Translate.BackoffBase, s.BackoffBase)
		setSeconds(&c.Translate.BackoffMax, s.BackoffMax)
		setInt(&c.Translate.BatchSize, s.BatchSize)
		setInt(&c.Translate.MaxTokens, s.MaxTokens)
		if s.Temperature != nil {
			c.Translate.Temperature = *s.Temperature
		}

		if s.MaxSubtitleSize != nil {
			c.Media.MaxSubtitleSize = *s.MaxSubtitleSize
		}
		setString(&c.Media.FFprobePath, s.FFprobePath)
		setString(&c.Media.FFmpegPath, s.FFmpegPath)
		setString(&c.Media.TempDir, s.TempDir)

		setInt(&c.Runtime.Workers, s.Workers)
		setString(&c.Runtime.HistoryDB, s.HistoryDB)
		setString(&c.Runtime.LockFile, s.LockFile)
		setString(&c.Runtime.LogLevel, s.LogLevel)
	}
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setSeconds(dst *time.Duration, v int) {
	if v != 0 {
		*dst = time.Duration(v) * time.Second
	}
}
