package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot transport settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"TELEGRAM_BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// MediaConfig describes the remote media-management service the bot talks to.
type MediaConfig struct {
	BaseURL           string  `yaml:"base_url" envconfig:"MEDIA_LIBRARY_URL"`
	APIKey            string  `yaml:"api_key" envconfig:"MEDIA_LIBRARY_MANAGER_TOKEN"`
	Language          string  `yaml:"language" envconfig:"MEDIA_LANGUAGE"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" envconfig:"MEDIA_TIMEOUT_SECONDS"`
	// CacheTTLSeconds < 0 disables response caching.
	CacheTTLSeconds   int     `yaml:"cache_ttl_seconds" envconfig:"MEDIA_CACHE_TTL_SECONDS"`
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"MEDIA_REQUESTS_PER_SECOND"`
	PosterBaseURL     string  `yaml:"poster_base_url" envconfig:"MEDIA_POSTER_BASE_URL"`
}

// AccessConfig lists the Telegram users allowed to start a conversation.
type AccessConfig struct {
	AllowedUsers []int64 `yaml:"allowed_users" envconfig:"WHITELISTED_USERS"`
}

// AssetsConfig points at local images used when no remote poster applies.
type AssetsConfig struct {
	PosterNotFound string `yaml:"poster_not_found" envconfig:"ASSET_POSTER_NOT_FOUND"`
	NoMoreResults  string `yaml:"no_more_results" envconfig:"ASSET_NO_MORE_RESULTS"`
}

// DatabaseConfig holds the optional postgres connection used by the request ledger.
// An empty Host disables the ledger.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Enabled reports whether a database has been configured.
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.Host) != ""
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file" envconfig:"LOG_FILE"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// Defaults applied by Normalize when the corresponding value is unset.
const (
	DefaultMediaLanguage     = "en"
	DefaultMediaTimeout      = 10
	DefaultMediaCacheTTL     = 300
	DefaultRequestsPerSecond = 5
	DefaultPosterBaseURL     = "https://image.tmdb.org/t/p/w600_and_h900_bestv2"
	DefaultPosterNotFound    = "./images/posternotfound.jpg"
	DefaultNoMoreResults     = "./images/404.jpeg"
)

// RateLimitConfig holds settings for per-user update throttling.
// ExcludeUpdates accepts "callback" and "message".
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the whole bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Media     MediaConfig     `yaml:"media"`
	Access    AccessConfig    `yaml:"access"`
	Assets    AssetsConfig    `yaml:"assets"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads configuration from a YAML file and environment variables.
// A missing file is not an error: the bot can be configured from the environment alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram token is required")
	}
	if err := normalizeRunMode(cfg); err != nil {
		return err
	}
	if err := normalizeMedia(&cfg.Media); err != nil {
		return err
	}

	if cfg.Assets.PosterNotFound == "" {
		cfg.Assets.PosterNotFound = DefaultPosterNotFound
	}
	if cfg.Assets.NoMoreResults == "" {
		cfg.Assets.NoMoreResults = DefaultNoMoreResults
	}

	if cfg.Database.Enabled() {
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
		if cfg.Database.MaxConnections <= 0 {
			cfg.Database.MaxConnections = 4
		}
	}

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}

func normalizeRunMode(cfg *Config) error {
	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" || rm == "polling" {
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm
	return nil
}

func normalizeMedia(m *MediaConfig) error {
	m.BaseURL = strings.TrimRight(strings.TrimSpace(m.BaseURL), "/")
	if m.BaseURL == "" {
		return fmt.Errorf("media.base_url is required")
	}
	u, err := url.Parse(m.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("media.base_url %q is not an absolute URL", m.BaseURL)
	}
	if strings.TrimSpace(m.APIKey) == "" {
		return fmt.Errorf("media.api_key is required")
	}
	if m.Language == "" {
		m.Language = DefaultMediaLanguage
	}
	if m.TimeoutSeconds < 0 {
		return fmt.Errorf("media.timeout_seconds must be >= 0")
	}
	if m.TimeoutSeconds == 0 {
		m.TimeoutSeconds = DefaultMediaTimeout
	}
	if m.CacheTTLSeconds == 0 {
		m.CacheTTLSeconds = DefaultMediaCacheTTL
	}
	if m.RequestsPerSecond <= 0 {
		m.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if m.PosterBaseURL == "" {
		m.PosterBaseURL = DefaultPosterBaseURL
	}
	return nil
}
