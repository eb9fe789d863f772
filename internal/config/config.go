package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingSetting is returned by Validate when a required setting is empty.
	ErrMissingSetting = errors.New("missing required setting")
	// ErrInvalidSetting is returned by Validate when a setting has an unusable value.
	ErrInvalidSetting = errors.New("invalid setting")
)

// Config holds all configuration for the reminder job
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Email     EmailConfig     `mapstructure:"email"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// DatabaseConfig holds PostgreSQL configuration.
// URL may be a postgres:// URL or a key=value DSN. When SecretKey is set it
// replaces the password of a URL-style connection string.
type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	SecretKey      string `mapstructure:"secret_key"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// DSN returns the connection string handed to lib/pq
func (c DatabaseConfig) DSN() (string, error) {
	if c.SecretKey == "" {
		return c.URL, nil
	}
	if !strings.Contains(c.URL, "://") {
		// later keys win in lib/pq, so this overrides any password in the DSN
		return strings.TrimSpace(c.URL) + " password=" + quoteDSNValue(c.SecretKey), nil
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	user := ""
	if u.User != nil {
		user = u.User.Username()
	}
	if user == "" {
		user = "postgres"
	}
	u.User = url.UserPassword(user, c.SecretKey)
	return u.String(), nil
}

// quoteDSNValue quotes a value for a key=value connection string
func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// checkScheme rejects URL-style connection strings lib/pq cannot dial
func (c DatabaseConfig) checkScheme() error {
	scheme, _, ok := strings.Cut(c.URL, "://")
	if !ok {
		return nil
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return nil
	}
	return fmt.Errorf("%w: database.url must be a postgres:// connection string, got %s:// "+
		"(a Supabase project URL is not a database address; use its Postgres connection string)",
		ErrInvalidSetting, scheme)
}

// RedisConfig holds Redis configuration for the run lock
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EmailConfig holds email sending configuration
type EmailConfig struct {
	// Provider is the email API to use: "resend", "sendgrid", "ses" or "gmail"
	Provider string `mapstructure:"provider"`
	// APIKey authenticates against the Resend or SendGrid API
	APIKey string `mapstructure:"api_key"`
	// FromAddress is the "From" email address
	FromAddress string `mapstructure:"from_address"`
	// FromName is the display name for the sender
	FromName string `mapstructure:"from_name"`
	// BaseURL overrides the provider API endpoint (Resend only)
	BaseURL string         `mapstructure:"base_url"`
	SES     SESEmailConfig `mapstructure:"ses"`
	Gmail   GmailConfig    `mapstructure:"gmail"`
}

// SESEmailConfig holds AWS SES credentials
type SESEmailConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
}

// DispatchConfig controls a single reminder run
type DispatchConfig struct {
	// Timezone used to determine "today"; empty means the process local zone
	Timezone string `mapstructure:"timezone"`
	// DateLayout formats {{deadline}} in templates
	DateLayout string `mapstructure:"date_layout"`
}

// Location resolves Timezone
func (c DispatchConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid dispatch timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SchedulerConfig holds the daemon mode schedule
type SchedulerConfig struct {
	Cron string `mapstructure:"cron"`
}

// Load reads configuration from .env, config file and environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/reminder")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("REMINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv keeps the variable names of existing deployments working.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"database.url":        {"REMINDER_DATABASE_URL", "SUPABASE_URL", "DATABASE_URL"},
		"database.secret_key": {"REMINDER_DATABASE_SECRET_KEY", "SUPABASE_SECRET_KEY"},
		"email.api_key":       {"REMINDER_EMAIL_API_KEY", "RESEND_API_KEY"},
		"email.from_address":  {"REMINDER_EMAIL_FROM_ADDRESS", "RESEND_FROM_EMAIL"},
		"email.from_name":     {"REMINDER_EMAIL_FROM_NAME", "RESEND_FROM_NAME"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks that every setting the selected email provider needs is present.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "database.url")
	}
	if c.Email.FromAddress == "" {
		missing = append(missing, "email.from_address")
	}

	switch c.Email.Provider {
	case "resend", "sendgrid":
		if c.Email.APIKey == "" {
			missing = append(missing, "email.api_key")
		}
	case "ses":
		if c.Email.SES.AccessKeyID == "" {
			missing = append(missing, "email.ses.access_key_id")
		}
		if c.Email.SES.SecretAccessKey == "" {
			missing = append(missing, "email.ses.secret_access_key")
		}
	case "gmail":
		if c.Email.Gmail.CredentialsJSON == "" && c.Email.Gmail.RefreshToken == "" {
			missing = append(missing, "email.gmail.credentials_json")
		}
	default:
		return fmt.Errorf("unsupported email provider %q", c.Email.Provider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}

	if err := c.Database.checkScheme(); err != nil {
		return err
	}

	if _, err := c.Dispatch.Location(); err != nil {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.secret_key", "")
	v.SetDefault("database.max_connections", 5)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "1h")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Email defaults
	v.SetDefault("email.provider", "resend")
	v.SetDefault("email.api_key", "")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.from_name", "Reminder System")
	v.SetDefault("email.base_url", "")
	v.SetDefault("email.ses.region", "us-east-1")
	v.SetDefault("email.ses.access_key_id", "")
	v.SetDefault("email.ses.secret_access_key", "")
	v.SetDefault("email.gmail.credentials_json", "")
	v.SetDefault("email.gmail.client_id", "")
	v.SetDefault("email.gmail.client_secret", "")
	v.SetDefault("email.gmail.refresh_token", "")

	// Dispatch defaults
	v.SetDefault("dispatch.timezone", "")
	v.SetDefault("dispatch.date_layout", "2006-01-02")

	// Scheduler defaults
	v.SetDefault("scheduler.cron", "0 9 * * *")
}
