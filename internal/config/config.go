package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything a summary run needs. All six credential/location
// values are required; the rest have defaults.
type Config struct {
	WeatherAPIKey  string `yaml:"weather_api_key"`
	NewsAPIKey     string `yaml:"news_api_key"`
	Location       string `yaml:"location"`
	EmailSender    string `yaml:"email_sender"`
	EmailPassword  string `yaml:"email_password"`
	EmailRecipient string `yaml:"email_recipient"`

	Units       string        `yaml:"units"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	Weather WeatherConfig `yaml:"weather"`
	News    NewsConfig    `yaml:"news"`
	SMTP    SMTPConfig    `yaml:"smtp"`
	Log     LogConfig     `yaml:"log"`

	Schedule   string `yaml:"schedule"`
	RunOnStart bool   `yaml:"run_on_start"`
	HTTPAddr   string `yaml:"http_addr"`
}

type WeatherConfig struct {
	BaseURL string `yaml:"base_url"`
}

type NewsConfig struct {
	BaseURL  string `yaml:"base_url"`
	Country  string `yaml:"country"`
	Category string `yaml:"category"`
}

type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ConfigurationError reports required settings that are absent or invalid.
type ConfigurationError struct {
	Missing []string
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("config: missing required settings: %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Reason, e.Err)
	}
	return "config: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func setDefaults(cfg *Config) {
	if cfg.Units == "" {
		cfg.Units = "imperial"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if cfg.News.BaseURL == "" {
		cfg.News.BaseURL = "https://newsapi.org/v2"
	}
	if cfg.News.Country == "" {
		cfg.News.Country = "us"
	}
	if cfg.News.Category == "" {
		cfg.News.Category = "politics"
	}
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = "smtp.gmail.com"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "0 7 * * *"
	}
}

func validate(cfg *Config) error {
	required := []struct {
		name  string
		value string
	}{
		{"WEATHER_API_KEY", cfg.WeatherAPIKey},
		{"NEWS_API_KEY", cfg.NewsAPIKey},
		{"LOCATION", cfg.Location},
		{"EMAIL_SENDER", cfg.EmailSender},
		{"EMAIL_PASSWORD", cfg.EmailPassword},
		{"EMAIL_RECIPIENT", cfg.EmailRecipient},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" || envVarRegex.MatchString(r.value) {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}

	switch cfg.Units {
	case "imperial", "metric":
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unsupported units %q (supported: imperial, metric)", cfg.Units)}
	}
	if cfg.HTTPTimeout < 0 {
		return &ConfigurationError{Reason: "http_timeout must be positive"}
	}
	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return &ConfigurationError{Reason: fmt.Sprintf("invalid smtp port %d", cfg.SMTP.Port)}
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unsupported log format %q (supported: text, json)", cfg.Log.Format)}
	}
	return nil
}

// applyEnv overrides file values with any environment variable that is set.
func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"WEATHER_API_KEY":  &cfg.WeatherAPIKey,
		"NEWS_API_KEY":     &cfg.NewsAPIKey,
		"LOCATION":         &cfg.Location,
		"EMAIL_SENDER":     &cfg.EmailSender,
		"EMAIL_PASSWORD":   &cfg.EmailPassword,
		"EMAIL_RECIPIENT":  &cfg.EmailRecipient,
		"UNITS":            &cfg.Units,
		"WEATHER_BASE_URL": &cfg.Weather.BaseURL,
		"NEWS_BASE_URL":    &cfg.News.BaseURL,
		"NEWS_COUNTRY":     &cfg.News.Country,
		"NEWS_CATEGORY":    &cfg.News.Category,
		"SMTP_HOST":        &cfg.SMTP.Host,
		"LOG_LEVEL":        &cfg.Log.Level,
		"LOG_FORMAT":       &cfg.Log.Format,
		"SCHEDULE":         &cfg.Schedule,
		"HTTP_ADDR":        &cfg.HTTPAddr,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigurationError{Reason: fmt.Sprintf("invalid SMTP_PORT %q", v)}
		}
		cfg.SMTP.Port = port
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("invalid HTTP_TIMEOUT %q", v)}
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigurationError{Reason: fmt.Sprintf("invalid RUN_ON_START %q", v)}
		}
		cfg.RunOnStart = b
	}
	return nil
}

// Load builds the configuration. When path is non-empty the YAML file is read
// first with ${VAR} expansion; environment variables then override it.
// Defaults are applied last and the result is validated.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigurationError{Reason: "failed to read " + path, Err: err}
		}

		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, &ConfigurationError{Reason: "failed to parse " + path, Err: err}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

