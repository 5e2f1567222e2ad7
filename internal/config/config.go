package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Mail     MailConfig     `yaml:"mail"`
	Contact  ContactConfig  `yaml:"contact"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// PublicBaseURL is the website address used for links in email bodies.
	PublicBaseURL string `yaml:"public_base_url"`
	// ExposeErrorDetails adds raw store errors to failure responses.
	ExposeErrorDetails bool `yaml:"expose_error_details"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the contact store connection settings.
type DatabaseConfig struct {
	URL                 string `yaml:"url"`
	MaxOpenConns        int    `yaml:"max_open_conns"`
	MaxIdleConns        int    `yaml:"max_idle_conns"`
	StoreTimeoutSeconds int    `yaml:"store_timeout_seconds"`
}

// StoreTimeout bounds a single insert.
func (c DatabaseConfig) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}

// MailConfig holds outbound email settings.
type MailConfig struct {
	Provider        string        `yaml:"provider"` // smtp, ses, mailgun, log
	FromEmail       string        `yaml:"from_email"`
	FromName        string        `yaml:"from_name"`
	ReplyTo         string        `yaml:"reply_to"`
	AdminRecipients []string      `yaml:"admin_recipients"`
	TimeoutSeconds  int           `yaml:"timeout_seconds"`
	SMTP            SMTPConfig    `yaml:"smtp"`
	SES             SESConfig     `yaml:"ses"`
	Mailgun         MailgunConfig `yaml:"mailgun"`
}

// Timeout bounds a single email send.
func (c MailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SMTPConfig holds SMTP submission settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Secure   bool   `yaml:"secure"` // implicit TLS (port 465); STARTTLS otherwise
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SESConfig holds AWS SES API configuration
type SESConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// MailgunConfig holds Mailgun API configuration
type MailgunConfig struct {
	Domain  string `yaml:"domain"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// ContactConfig tunes the contact submission flow.
type ContactConfig struct {
	StrictValidation      bool `yaml:"strict_validation"`
	ParallelNotifications bool `yaml:"parallel_notifications"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether PII redaction is on. It defaults to true.
func (c LogConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// StoreConfigured reports whether the contact store connection is set.
func (c *Config) StoreConfigured() bool {
	return strings.TrimSpace(c.Database.URL) != ""
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Server.PublicBaseURL == "" {
		cfg.Server.PublicBaseURL = "http://localhost:3000"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.StoreTimeoutSeconds == 0 {
		cfg.Database.StoreTimeoutSeconds = 10
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "smtp"
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "AIDEA"
	}
	if cfg.Mail.TimeoutSeconds == 0 {
		cfg.Mail.TimeoutSeconds = 15
	}
	if cfg.Mail.SMTP.Port == 0 {
		if cfg.Mail.SMTP.Secure {
			cfg.Mail.SMTP.Port = 465
		} else {
			cfg.Mail.SMTP.Port = 587
		}
	}
	if cfg.Mail.SES.Region == "" {
		cfg.Mail.SES.Region = "us-east-1"
	}
	if cfg.Mail.Mailgun.BaseURL == "" {
		cfg.Mail.Mailgun.BaseURL = "https://api.mailgun.net/v3"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
// A missing config file is not an error: defaults plus environment apply.
// Defaults are filled in after the overrides, so derived values such as the
// SMTP port follow SMTP_SECURE.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := parseFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = &Config{}
	} else if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.Server.PublicBaseURL = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	// Mail overrides
	if v := os.Getenv("MAIL_PROVIDER"); v != "" {
		cfg.Mail.Provider = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.Mail.FromEmail = v
	}
	if v := os.Getenv("ADMIN_EMAILS"); v != "" {
		cfg.Mail.AdminRecipients = splitList(v)
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Mail.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Mail.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_SECURE"); v != "" {
		if secure, err := strconv.ParseBool(v); err == nil {
			cfg.Mail.SMTP.Secure = secure
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Mail.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Mail.SMTP.Password = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Mail.SES.Region = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Mail.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Mail.SES.SecretKey = v
	}
	if v := os.Getenv("MAILGUN_DOMAIN"); v != "" {
		cfg.Mail.Mailgun.Domain = v
	}
	if v := os.Getenv("MAILGUN_API_KEY"); v != "" {
		cfg.Mail.Mailgun.APIKey = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	applyDefaults(cfg)
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
