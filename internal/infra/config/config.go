package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/nutrition-advisor/internal/domain/advisor"
	"github.com/yanqian/nutrition-advisor/internal/domain/fitness"
	"github.com/yanqian/nutrition-advisor/internal/infra/llm/gemini"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     LLMConfig     `yaml:"llm"`
	Google  GoogleConfig  `yaml:"google"`
	Fitness FitnessConfig `yaml:"fitness"`
	Session SessionConfig `yaml:"session"`
	Advisor AdvisorConfig `yaml:"advisor"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig selects and configures the text generation provider.
type LLMConfig struct {
	Mode        string        `yaml:"mode"`
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID             string   `yaml:"clientId"`
	ClientSecret         string   `yaml:"clientSecret"`
	RedirectURL          string   `yaml:"redirectUrl"`
	PostLoginRedirectURL string   `yaml:"postLoginRedirectUrl"`
	Scopes               []string `yaml:"scopes"`
}

// FitnessConfig points at the Google Fit REST API.
type FitnessConfig struct {
	APIBaseURL   string        `yaml:"apiBaseUrl"`
	DataSourceID string        `yaml:"dataSourceId"`
	MetricName   string        `yaml:"metricName"`
	WindowDays   int           `yaml:"windowDays"`
	Timeout      time.Duration `yaml:"timeout"`
}

// SessionConfig controls the browser session cookie.
type SessionConfig struct {
	Secret       string        `yaml:"secret"`
	TTL          time.Duration `yaml:"ttl"`
	CookieName   string        `yaml:"cookieName"`
	SecureCookie bool          `yaml:"secureCookie"`
}

// AdvisorConfig holds the instruction sent ahead of the user data.
type AdvisorConfig struct {
	Prompt string `yaml:"prompt"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

var dotEnvFiles = []string{".env.local", ".env"}

// Load reads configuration from .env files, a YAML file and environment variables.
func Load() (*Config, error) {
	if err := loadDotEnv(dotEnvFiles...); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv never overrides variables that are already set.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("LLM_MODE"); v != "" {
		cfg.LLM.Mode = strings.ToLower(strings.TrimSpace(v))
	}
	if v := firstEnv("LLM_API_KEY", "GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Google.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REDIRECT_URL"); v != "" {
		cfg.Google.RedirectURL = v
	}
	if v := os.Getenv("GOOGLE_POST_LOGIN_REDIRECT_URL"); v != "" {
		cfg.Google.PostLoginRedirectURL = v
	}
	if v := os.Getenv("GOOGLE_SCOPES"); v != "" {
		cfg.Google.Scopes = splitList(v)
	}
	if v := os.Getenv("FITNESS_API_BASE_URL"); v != "" {
		cfg.Fitness.APIBaseURL = v
	}
	if v := os.Getenv("FITNESS_DATA_SOURCE_ID"); v != "" {
		cfg.Fitness.DataSourceID = v
	}
	if v := os.Getenv("FITNESS_METRIC_NAME"); v != "" {
		cfg.Fitness.MetricName = v
	}
	if v := os.Getenv("FITNESS_WINDOW_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Fitness.WindowDays = parsed
		}
	}
	if v := os.Getenv("FITNESS_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Fitness.Timeout = parsed
		}
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Session.Secret = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = parsed
		}
	}
	if v := os.Getenv("SESSION_COOKIE_NAME"); v != "" {
		cfg.Session.CookieName = v
	}
	if v := os.Getenv("SESSION_SECURE_COOKIE"); v != "" {
		cfg.Session.SecureCookie = parseBool(v)
	}
	if v := os.Getenv("ADVISOR_PROMPT"); v != "" {
		cfg.Advisor.Prompt = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8501"},
		},
		LLM: LLMConfig{
			Mode:        "gemini",
			BaseURL:     gemini.DefaultBaseURL,
			Model:       "gemini-2.0-flash",
			Temperature: 0.4,
			Timeout:     60 * time.Second,
		},
		Google: GoogleConfig{
			RedirectURL:          "http://localhost:8080/api/v1/oauth/google/callback",
			PostLoginRedirectURL: "http://localhost:5173/",
		},
		Fitness: FitnessConfig{
			APIBaseURL:   "https://www.googleapis.com/fitness/v1/users/me",
			DataSourceID: fitness.DefaultHeartRateSource,
			MetricName:   fitness.DefaultHeartRateMetric,
			WindowDays:   7,
			Timeout:      15 * time.Second,
		},
		Session: SessionConfig{
			TTL:        12 * time.Hour,
			CookieName: "nutrition_session",
		},
		Advisor: AdvisorConfig{
			Prompt: advisor.DefaultPrompt,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	switch c.LLM.Mode {
	case "gemini":
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			return errors.New("llm.apiKey cannot be empty in gemini mode")
		}
	case "mock":
	default:
		return fmt.Errorf("llm.mode %q is not supported", c.LLM.Mode)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if (c.Google.ClientID == "") != (c.Google.ClientSecret == "") {
		return errors.New("google.clientId and google.clientSecret must be set together")
	}
	if c.Fitness.WindowDays <= 0 {
		return errors.New("fitness.windowDays must be positive")
	}
	if strings.TrimSpace(c.Fitness.DataSourceID) == "" {
		return errors.New("fitness.dataSourceId cannot be empty")
	}
	if len(c.Session.Secret) < 16 {
		return errors.New("session.secret must be at least 16 characters")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return errors.New("session.cookieName cannot be empty")
	}
	if strings.TrimSpace(c.Advisor.Prompt) == "" {
		return errors.New("advisor.prompt cannot be empty")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}

// GoogleConfigured reports whether OAuth client credentials are present.
func (c *Config) GoogleConfigured() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
