package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string        `yaml:"port"`
	Environment     string        `yaml:"environment"`
	APIBaseURL      string        `yaml:"api_base_url"`
	APITimeout      time.Duration `yaml:"api_timeout"`
	DatabasePath    string        `yaml:"database_path"`
	SecretKey       string        `yaml:"secret_key"`
	SessionDuration time.Duration `yaml:"session_duration"`
	AllowedOrigins  string        `yaml:"allowed_origins"`
	LogLevel        string        `yaml:"log_level"`
	TemplatesDir    string        `yaml:"templates_dir"`
	StaticDir       string        `yaml:"static_dir"`
	AppURL          string        `yaml:"app_url"`

	MailgunDomain      string `yaml:"mailgun_domain"`
	MailgunAPIKey      string `yaml:"mailgun_api_key"`
	MailgunSenderEmail string `yaml:"mailgun_sender_email"`
	MailgunSenderName  string `yaml:"mailgun_sender_name"`
}

const defaultSecretKey = "your-secret-key-change-this-in-production"

func defaults() *Config {
	return &Config{
		Port:               "3000",
		Environment:        "production",
		APIBaseURL:         "http://127.0.0.1:8000",
		APITimeout:         30 * time.Second,
		DatabasePath:       "terrepro.db",
		SecretKey:          defaultSecretKey,
		SessionDuration:    7 * 24 * time.Hour,
		AllowedOrigins:     "http://localhost:3000",
		LogLevel:           "INFO",
		TemplatesDir:       "templates",
		StaticDir:          "static",
		AppURL:             "http://localhost:3000",
		MailgunSenderEmail: "noreply@terrepro.fr",
		MailgunSenderName:  "TerrePro",
	}
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists.
func Load() *Config {
	loadEnvIfExists()
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a YAML file on top of the defaults. Environment variables
// still take precedence over values from the file.
func LoadFile(path string) (*Config, error) {
	loadEnvIfExists()
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == "" || c.SecretKey == defaultSecretKey
}

func (c *Config) MailgunEnabled() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != ""
}

func (c *Config) HTTPAddr() string {
	return ":" + c.Port
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.APIBaseURL = strings.TrimRight(getEnv("API_BASE_URL", c.APIBaseURL), "/")
	c.APITimeout = getDuration("API_TIMEOUT", c.APITimeout)
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.SecretKey = getEnv("SECRET_KEY", c.SecretKey)
	c.SessionDuration = getDuration("SESSION_DURATION", c.SessionDuration)
	c.AllowedOrigins = getEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.TemplatesDir = getEnv("TEMPLATES_DIR", c.TemplatesDir)
	c.StaticDir = getEnv("STATIC_DIR", c.StaticDir)
	c.AppURL = strings.TrimRight(getEnv("APP_URL", c.AppURL), "/")
	c.MailgunDomain = getEnv("MAILGUN_DOMAIN", c.MailgunDomain)
	c.MailgunAPIKey = getEnv("MAILGUN_API_KEY", c.MailgunAPIKey)
	c.MailgunSenderEmail = getEnv("MAILGUN_SENDER_EMAIL", c.MailgunSenderEmail)
	c.MailgunSenderName = getEnv("MAILGUN_SENDER_NAME", c.MailgunSenderName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("90s", "12h"). Invalid values keep the default.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func loadEnvIfExists() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}
