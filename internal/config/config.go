// Package config loads and validates the application configuration from the
// environment. Configuration is explicit: required notification credentials
// are checked at startup so alerts are never attempted with empty values.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EmailConfig carries SMTP credentials for the email alert channel
type EmailConfig struct {
	Sender   string // ALERT_EMAIL
	Password string // ALERT_PASSWORD
	Receiver string // ALERT_RECEIVER
	SMTPHost string // SMTP_SERVER
	SMTPPort int    // SMTP_PORT
}

// SMSConfig carries Twilio credentials for the SMS alert channel
type SMSConfig struct {
	AccountSID string // TWILIO_SID
	AuthToken  string // TWILIO_AUTH_TOKEN
	FromNumber string // TWILIO_PHONE
	ToNumber   string // ALERT_PHONE
}

// Config is the full runtime configuration
type Config struct {
	DBPath        string   // WASHGUARD_DB, empty means the repository default
	Channels      []string // ALERT_CHANNELS, comma-separated: email, sms
	Email         EmailConfig
	SMS           SMSConfig
	TelegramToken string // TELEGRAM_BOT_TOKEN
	OpenAIKey     string // OPENAI_API_KEY
	ReportURL     string // REPORT_URL, optional field report import source
	MonitorCron   string // MONITOR_CRON, evaluation pass schedule
	PersistAlerts bool   // PERSIST_ALERTS, enable the open-alert ledger
	AppUser       string // APP_USER, dashboard login
	AppPass       string // APP_PASS
}

// ChannelEnabled reports whether a channel name appears in ALERT_CHANNELS
func (c *Config) ChannelEnabled(name string) bool {
	for _, ch := range c.Channels {
		if ch == name {
			return true
		}
	}
	return false
}

// Load reads the configuration from the environment. A local .env file is
// loaded first when present. Enabled channels with incomplete credentials
// are a hard error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env file")
	}

	cfg := &Config{
		DBPath: os.Getenv("WASHGUARD_DB"),
		Email: EmailConfig{
			Sender:   os.Getenv("ALERT_EMAIL"),
			Password: os.Getenv("ALERT_PASSWORD"),
			Receiver: os.Getenv("ALERT_RECEIVER"),
			SMTPHost: envOrDefault("SMTP_SERVER", "smtp.gmail.com"),
		},
		SMS: SMSConfig{
			AccountSID: os.Getenv("TWILIO_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber: os.Getenv("TWILIO_PHONE"),
			ToNumber:   os.Getenv("ALERT_PHONE"),
		},
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		ReportURL:     os.Getenv("REPORT_URL"),
		MonitorCron:   envOrDefault("MONITOR_CRON", "0 * * * *"),
		AppUser:       os.Getenv("APP_USER"),
		AppPass:       os.Getenv("APP_PASS"),
	}

	portStr := envOrDefault("SMTP_PORT", "587")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT %q: %v", portStr, err)
	}
	cfg.Email.SMTPPort = port

	cfg.PersistAlerts = envBool("PERSIST_ALERTS")

	// An unset ALERT_CHANNELS enables both channels; an explicitly empty
	// one disables notifications entirely.
	channelsSpec, ok := os.LookupEnv("ALERT_CHANNELS")
	if !ok {
		channelsSpec = "email,sms"
	}
	for _, ch := range strings.Split(channelsSpec, ",") {
		ch = strings.ToLower(strings.TrimSpace(ch))
		if ch == "" {
			continue
		}
		if ch != "email" && ch != "sms" {
			return nil, fmt.Errorf("unknown alert channel %q in ALERT_CHANNELS", ch)
		}
		cfg.Channels = append(cfg.Channels, ch)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate fails fast on incomplete credentials for enabled channels
func (c *Config) validate() error {
	if c.ChannelEnabled("email") {
		if c.Email.Sender == "" || c.Email.Password == "" || c.Email.Receiver == "" {
			return fmt.Errorf("email channel enabled but ALERT_EMAIL, ALERT_PASSWORD or ALERT_RECEIVER is not set")
		}
	}
	if c.ChannelEnabled("sms") {
		if c.SMS.AccountSID == "" || c.SMS.AuthToken == "" || c.SMS.FromNumber == "" || c.SMS.ToNumber == "" {
			return fmt.Errorf("sms channel enabled but TWILIO_SID, TWILIO_AUTH_TOKEN, TWILIO_PHONE or ALERT_PHONE is not set")
		}
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
