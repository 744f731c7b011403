// Package config loads fetchbot settings from defaults, an optional YAML
// file, an optional .env file and FETCHBOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidTimeout     = errors.New("http.timeout must be positive")
	ErrInvalidStepTimeout = errors.New("calendar.step_timeout must be positive")
	ErrInvalidPoolSize    = errors.New("pool.size must be at least 1")
	ErrInvalidFeedLimit   = errors.New("feed.default_limit must be non-negative")
	ErrMissingBaseURL     = errors.New("every source needs a base_url")
	ErrInvalidLogLevel    = errors.New("log.level must be one of: debug, info, warn, error")
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Weather   WeatherConfig   `yaml:"weather"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Feed      FeedConfig      `yaml:"feed"`
	Comic     ComicConfig     `yaml:"comic"`
	Pool      PoolConfig      `yaml:"pool"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type HTTPConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	ProxyURL string        `yaml:"proxy_url"`
}

type WeatherConfig struct {
	BaseURL     string `yaml:"base_url"`
	UserAgent   string `yaml:"user_agent"`
	SkipOverlay bool   `yaml:"skip_overlay"`
}

type CalendarConfig struct {
	LoginURL    string        `yaml:"login_url"`
	EmailDomain string        `yaml:"email_domain"`
	StepTimeout time.Duration `yaml:"step_timeout"`
	ShowUI      bool          `yaml:"show_ui"`
	BrowserBin  string        `yaml:"browser_bin"`
}

type FeedConfig struct {
	BaseURL      string `yaml:"base_url"`
	UserAgent    string `yaml:"user_agent"`
	DefaultLimit int    `yaml:"default_limit"`
}

type ComicConfig struct {
	BaseURL string `yaml:"base_url"`
}

type PoolConfig struct {
	Size int `yaml:"size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout: 10 * time.Second,
		},
		Weather: WeatherConfig{
			BaseURL:   "http://www.bom.gov.au",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/114.0",
		},
		Calendar: CalendarConfig{
			LoginURL:    "https://mhs-vic.compass.education/login.aspx?sessionstate=disabled",
			EmailDomain: "mhs.vic.edu.au",
			StepTimeout: 15 * time.Second,
		},
		Feed: FeedConfig{
			BaseURL:      "https://old.reddit.com",
			UserAgent:    "fetchbot/1.0",
			DefaultLimit: 5,
		},
		Comic: ComicConfig{
			BaseURL: "https://xkcd.com",
		},
		Pool: PoolConfig{
			Size: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "fetchbot",
		},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error. File values override defaults only when non-zero, so
// switches default to false.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		fromFile, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
			return Config{}, fmt.Errorf("failed to merge config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTP.Timeout = getEnvDuration("FETCHBOT_HTTP_TIMEOUT", cfg.HTTP.Timeout)
	cfg.HTTP.ProxyURL = getEnv("FETCHBOT_PROXY", cfg.HTTP.ProxyURL)

	cfg.Weather.BaseURL = getEnv("FETCHBOT_WEATHER_BASE_URL", cfg.Weather.BaseURL)
	cfg.Weather.SkipOverlay = getEnvBool("FETCHBOT_WEATHER_SKIP_OVERLAY", cfg.Weather.SkipOverlay)

	cfg.Calendar.LoginURL = getEnv("FETCHBOT_CALENDAR_LOGIN_URL", cfg.Calendar.LoginURL)
	cfg.Calendar.EmailDomain = getEnv("FETCHBOT_CALENDAR_EMAIL_DOMAIN", cfg.Calendar.EmailDomain)
	cfg.Calendar.StepTimeout = getEnvDuration("FETCHBOT_CALENDAR_STEP_TIMEOUT", cfg.Calendar.StepTimeout)
	cfg.Calendar.ShowUI = getEnvBool("FETCHBOT_CALENDAR_SHOW_UI", cfg.Calendar.ShowUI)
	cfg.Calendar.BrowserBin = getEnv("FETCHBOT_BROWSER_BIN", cfg.Calendar.BrowserBin)

	cfg.Feed.BaseURL = getEnv("FETCHBOT_FEED_BASE_URL", cfg.Feed.BaseURL)
	cfg.Feed.UserAgent = getEnv("FETCHBOT_FEED_USER_AGENT", cfg.Feed.UserAgent)
	cfg.Feed.DefaultLimit = getEnvInt("FETCHBOT_FEED_DEFAULT_LIMIT", cfg.Feed.DefaultLimit)

	cfg.Comic.BaseURL = getEnv("FETCHBOT_COMIC_BASE_URL", cfg.Comic.BaseURL)

	cfg.Pool.Size = getEnvInt("FETCHBOT_POOL_SIZE", cfg.Pool.Size)
	cfg.Log.Level = getEnv("FETCHBOT_LOG_LEVEL", cfg.Log.Level)
	cfg.Telemetry.OTLPEndpoint = getEnv("FETCHBOT_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
}

func (c Config) Validate() error {
	if c.HTTP.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Calendar.StepTimeout <= 0 {
		return ErrInvalidStepTimeout
	}
	if c.Pool.Size < 1 {
		return ErrInvalidPoolSize
	}
	if c.Feed.DefaultLimit < 0 {
		return ErrInvalidFeedLimit
	}
	for _, u := range []string{c.Weather.BaseURL, c.Calendar.LoginURL, c.Feed.BaseURL, c.Comic.BaseURL} {
		if strings.TrimSpace(u) == "" {
			return ErrMissingBaseURL
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
