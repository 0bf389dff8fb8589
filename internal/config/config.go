// Package config loads ELEY settings from a YAML file, ELEY_* environment
// variables and built-in defaults, in increasing order of precedence:
// defaults < file < environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Quota      QuotaConfig      `yaml:"quota" mapstructure:"quota"`
	Matcher    MatcherConfig    `yaml:"matcher" mapstructure:"matcher"`
	Fallback   FallbackConfig   `yaml:"fallback" mapstructure:"fallback"`
	Vocabulary VocabularyConfig `yaml:"vocabulary" mapstructure:"vocabulary"`
	Speech     SpeechConfig     `yaml:"speech" mapstructure:"speech"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Device     DeviceConfig     `yaml:"device" mapstructure:"device"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type StorageConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"` // json, sqlite or memory
	KnowledgePath string `yaml:"knowledge_path" mapstructure:"knowledge_path"`
	QuotaPath     string `yaml:"quota_path" mapstructure:"quota_path"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

type QuotaConfig struct {
	Limit int `yaml:"limit" mapstructure:"limit"`
}

type MatcherConfig struct {
	Cutoff float64 `yaml:"cutoff" mapstructure:"cutoff"`
}

type FallbackConfig struct {
	Provider     string        `yaml:"provider" mapstructure:"provider"` // wolfram, ollama or none
	AppID        string        `yaml:"app_id" mapstructure:"app_id"`
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	Model        string        `yaml:"model" mapstructure:"model"`
	CacheAnswers bool          `yaml:"cache_answers" mapstructure:"cache_answers"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type VocabularyConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Watch bool   `yaml:"watch" mapstructure:"watch"`
}

type SpeechConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	TTSURL   string `yaml:"tts_url" mapstructure:"tts_url"`
	Lang     string `yaml:"lang" mapstructure:"lang"`
	AudioDir string `yaml:"audio_dir" mapstructure:"audio_dir"`
	Player   string `yaml:"player" mapstructure:"player"`
}

type SearchConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

type DeviceConfig struct {
	Port    string        `yaml:"port" mapstructure:"port"`
	Baud    int           `yaml:"baud" mapstructure:"baud"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Settle  time.Duration `yaml:"settle" mapstructure:"settle"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:       "json",
			KnowledgePath: "knowledge_base.json",
			QuotaPath:     "query_count.json",
			SQLitePath:    "./data/eley.db",
		},
		Quota:   QuotaConfig{Limit: 100},
		Matcher: MatcherConfig{Cutoff: 0.6},
		Fallback: FallbackConfig{
			Provider:   "wolfram",
			AppID:      "$WOLFRAM_APP_ID",
			MaxRetries: 3,
			Timeout:    30 * time.Second,
		},
		Vocabulary: VocabularyConfig{Watch: true},
		Speech:     SpeechConfig{Lang: "en"},
		Device: DeviceConfig{
			Baud:    9600,
			Timeout: time.Second,
			Settle:  2 * time.Second,
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
	}
}

// defaults registers every key so ELEY_* variables apply even when the file
// does not mention the key.
func defaults(v *viper.Viper, c *Config) {
	v.SetDefault("storage.backend", c.Storage.Backend)
	v.SetDefault("storage.knowledge_path", c.Storage.KnowledgePath)
	v.SetDefault("storage.quota_path", c.Storage.QuotaPath)
	v.SetDefault("storage.sqlite_path", c.Storage.SQLitePath)
	v.SetDefault("quota.limit", c.Quota.Limit)
	v.SetDefault("matcher.cutoff", c.Matcher.Cutoff)
	v.SetDefault("fallback.provider", c.Fallback.Provider)
	v.SetDefault("fallback.app_id", c.Fallback.AppID)
	v.SetDefault("fallback.base_url", c.Fallback.BaseURL)
	v.SetDefault("fallback.model", c.Fallback.Model)
	v.SetDefault("fallback.cache_answers", c.Fallback.CacheAnswers)
	v.SetDefault("fallback.max_retries", c.Fallback.MaxRetries)
	v.SetDefault("fallback.timeout", c.Fallback.Timeout)
	v.SetDefault("vocabulary.path", c.Vocabulary.Path)
	v.SetDefault("vocabulary.watch", c.Vocabulary.Watch)
	v.SetDefault("speech.enabled", c.Speech.Enabled)
	v.SetDefault("speech.tts_url", c.Speech.TTSURL)
	v.SetDefault("speech.lang", c.Speech.Lang)
	v.SetDefault("speech.audio_dir", c.Speech.AudioDir)
	v.SetDefault("speech.player", c.Speech.Player)
	v.SetDefault("search.base_url", c.Search.BaseURL)
	v.SetDefault("device.port", c.Device.Port)
	v.SetDefault("device.baud", c.Device.Baud)
	v.SetDefault("device.timeout", c.Device.Timeout)
	v.SetDefault("device.settle", c.Device.Settle)
	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.development", c.Log.Development)
}

// Load reads the configuration. An explicit path must exist; otherwise
// eley.yaml is looked up in the working directory and the user config
// directory, and a missing file means defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	defaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("eley")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "eley"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "eley"))
		}
	}

	v.SetEnvPrefix("ELEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.Fallback.AppID = expandEnv(cfg.Fallback.AppID)
	if strings.HasPrefix(cfg.Fallback.AppID, "$") {
		cfg.Fallback.AppID = ""
	}
	cfg.Fallback.BaseURL = expandEnv(cfg.Fallback.BaseURL)
	cfg.Device.Port = expandEnv(cfg.Device.Port)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FallbackEnabled reports whether a fallback provider can be built. A
// wolfram provider without an app id is disabled rather than an error, so
// the offline commands keep working.
func (c *Config) FallbackEnabled() bool {
	switch c.Fallback.Provider {
	case "wolfram":
		return c.Fallback.AppID != ""
	case "ollama":
		return true
	}
	return false
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "json":
		if c.Storage.KnowledgePath == "" || c.Storage.QuotaPath == "" {
			return fmt.Errorf("config: storage backend json requires knowledge_path and quota_path")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("config: storage backend sqlite requires sqlite_path")
		}
	case "memory":
	default:
		return fmt.Errorf("config: storage.backend %q is invalid (must be json, sqlite, or memory)", c.Storage.Backend)
	}

	if c.Quota.Limit < 0 {
		return fmt.Errorf("config: quota.limit must not be negative")
	}
	if c.Matcher.Cutoff <= 0 || c.Matcher.Cutoff > 1 {
		return fmt.Errorf("config: matcher.cutoff must be greater than 0 and at most 1")
	}

	switch c.Fallback.Provider {
	case "wolfram", "ollama", "none":
	default:
		return fmt.Errorf("config: fallback.provider %q is invalid (must be wolfram, ollama, or none)", c.Fallback.Provider)
	}
	if c.Fallback.MaxRetries < 0 {
		return fmt.Errorf("config: fallback.max_retries must not be negative")
	}

	if c.Device.Port != "" && c.Device.Baud <= 0 {
		return fmt.Errorf("config: device.baud must be positive")
	}
	if c.Fallback.Timeout <= 0 {
		c.Fallback.Timeout = 30 * time.Second
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	return nil
}
