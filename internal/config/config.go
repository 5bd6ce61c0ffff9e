// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SMS backends.
const (
	BackendTwilio = "twilio"
	BackendTelnyx = "telnyx"
	BackendKafka  = "kafka"
	BackendLog    = "log"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	SMS     SMSConfig
	Twilio  TwilioConfig
	Telnyx  TelnyxConfig
	Kafka   KafkaConfig
	Gemini  GeminiConfig
	JWT     JWTConfig
	Phrases PhrasesConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type SMSConfig struct {
	Backend            string
	Timeout            time.Duration
	KidFriendlyQueries bool
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

type TelnyxConfig struct {
	APIKey     string
	FromNumber string
}

type KafkaConfig struct {
	Brokers []string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type JWTConfig struct {
	SigningKey string
	Issuer     string
}

// PhrasesConfig extends the built-in trigger patterns and blocklist.
type PhrasesConfig struct {
	File     string   `yaml:"-"`
	Triggers []string `yaml:"triggers"`
	Blocked  []string `yaml:"blocked"`
}

// Configured reports whether all Twilio credentials are present.
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// Configured reports whether all Telnyx credentials are present.
func (c TelnyxConfig) Configured() bool {
	return c.APIKey != "" && c.FromNumber != ""
}

// Load reads a .env file from the working directory if one exists, then
// builds the configuration from environment variables. PORT (Cloud Run
// standard) takes precedence over SHOWME_PORT.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = getEnv("SHOWME_PORT", "5002")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     port,
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		SMS: SMSConfig{
			Backend:            strings.ToLower(getEnv("SMS_BACKEND", "")),
			Timeout:            getEnvDuration("SMS_TIMEOUT", 10*time.Second),
			KidFriendlyQueries: getEnvBool("SHOWME_KID_FRIENDLY_QUERIES", false),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_SID", ""),
			AuthToken:  getEnv("TWILIO_TOKEN", ""),
			From:       getEnv("TWILIO_FROM", ""),
		},
		Telnyx: TelnyxConfig{
			APIKey:     getEnv("TELNYX_API_KEY", ""),
			FromNumber: getEnv("TELNYX_FROM_NUMBER", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		JWT: JWTConfig{
			SigningKey: getEnv("SHOWME_JWT_SIGNING_KEY", ""),
			Issuer:     getEnv("SHOWME_JWT_ISSUER", "catinci-showme"),
		},
		Phrases: PhrasesConfig{
			File: getEnv("SHOWME_PHRASES_FILE", ""),
		},
	}

	if cfg.SMS.Backend == "" {
		cfg.SMS.Backend = BackendLog
		if cfg.Twilio.Configured() {
			cfg.SMS.Backend = BackendTwilio
		}
	}

	if cfg.Phrases.File != "" {
		if err := cfg.Phrases.load(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected SMS backend has what it needs.
func (c *Config) Validate() error {
	switch c.SMS.Backend {
	case BackendTwilio:
		if !c.Twilio.Configured() {
			return errors.New("SMS_BACKEND=twilio requires TWILIO_SID, TWILIO_TOKEN and TWILIO_FROM")
		}
	case BackendTelnyx:
		if !c.Telnyx.Configured() {
			return errors.New("SMS_BACKEND=telnyx requires TELNYX_API_KEY and TELNYX_FROM_NUMBER")
		}
	case BackendKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("SMS_BACKEND=kafka requires KAFKA_BROKERS")
		}
	case BackendLog:
	default:
		return fmt.Errorf("unknown SMS_BACKEND %q", c.SMS.Backend)
	}
	if c.SMS.Timeout <= 0 {
		return fmt.Errorf("SMS_TIMEOUT must be positive, got %s", c.SMS.Timeout)
	}
	return nil
}

func (p *PhrasesConfig) load() error {
	data, err := os.ReadFile(p.File)
	if err != nil {
		return fmt.Errorf("read phrases file: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return fmt.Errorf("parse phrases file %s: %w", p.File, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
