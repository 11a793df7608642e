// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
	// Milliseconds a writer waits on the sqlite lock before giving up.
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
}

// TariffConfig holds the hourly rates in whole currency units and the hour
// of day at which the night rate starts.
type TariffConfig struct {
	DayRate      int64 `yaml:"day_rate"`
	NightRate    int64 `yaml:"night_rate"`
	BoundaryHour int   `yaml:"boundary_hour"`
}

type FacilityConfig struct {
	Name             string  `yaml:"name"`
	Courts           int     `yaml:"courts"`
	OpeningHour      int     `yaml:"opening_hour"`
	ClosingHour      int     `yaml:"closing_hour"`
	SlotMinutes      int     `yaml:"slot_minutes"`
	MinDurationHours float64 `yaml:"min_duration_hours"`
	MaxDurationHours float64 `yaml:"max_duration_hours"`
	PhoneRegion      string  `yaml:"phone_region"`
	Timezone         string  `yaml:"timezone"`
}

type TournamentConfig struct {
	DefaultMinParticipants int `yaml:"default_min_participants"`
	DefaultMaxParticipants int `yaml:"default_max_participants"`
}

type EmailConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Queue   string `yaml:"queue"`
	URL     string `yaml:"-"` // Loaded from environment
}

type SchedulerConfig struct {
	ReminderCron        string `yaml:"reminder_cron"`
	ReminderHoursBefore int    `yaml:"reminder_hours_before"`
}

// DirectoryConfig selects where tournament partners are looked up:
// "store" (the local users table) or "cognito".
type DirectoryConfig struct {
	Provider   string `yaml:"provider"`
	UserPoolID string `yaml:"user_pool_id"`
}

// RateLimitConfig caps public write requests per client IP per hour.
// Zero disables the limit.
type RateLimitConfig struct {
	WritesPerHour int  `yaml:"writes_per_hour"`
	TrustProxy    bool `yaml:"trust_proxy"`
}

type Config struct {
	App struct {
		Name           string `yaml:"name"`
		Environment    string `yaml:"environment"`
		Port           int    `yaml:"port"`
		AdminTokenHash string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database    DatabaseConfig   `yaml:"database"`
	Tariff      TariffConfig     `yaml:"tariff"`
	Facility    FacilityConfig   `yaml:"facility"`
	Tournaments TournamentConfig `yaml:"tournaments"`
	Email       EmailConfig      `yaml:"email"`
	Events      EventsConfig     `yaml:"events"`
	Scheduler   SchedulerConfig  `yaml:"scheduler"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit"`
	Directory   DirectoryConfig  `yaml:"directory"`
}

// Default returns a configuration usable for local development and tests.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "courtbook"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.Database = DatabaseConfig{Driver: "sqlite", Filename: "data/courtbook.db", BusyTimeoutMS: 5000}
	cfg.Tariff = TariffConfig{DayRate: 250, NightRate: 400, BoundaryHour: 16}
	cfg.Facility = FacilityConfig{
		Name:             "Courtbook",
		Courts:           4,
		OpeningHour:      8,
		ClosingHour:      23,
		SlotMinutes:      30,
		MinDurationHours: 1,
		MaxDurationHours: 3,
		PhoneRegion:      "US",
		Timezone:         "UTC",
	}
	cfg.Tournaments = TournamentConfig{DefaultMinParticipants: 4, DefaultMaxParticipants: 16}
	cfg.Events.Queue = "courtbook.events"
	cfg.Scheduler = SchedulerConfig{ReminderCron: "*/15 * * * *", ReminderHoursBefore: 24}
	cfg.RateLimit = RateLimitConfig{WritesPerHour: 60}
	cfg.Directory.Provider = "store"
	return cfg
}

// Load loads both .env and yaml configuration on top of Default.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.App.AdminTokenHash = os.Getenv("ADMIN_TOKEN_HASH")
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.Events.URL = os.Getenv("AMQP_URL")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if err := c.Tariff.Validate(); err != nil {
		return err
	}
	if err := c.Facility.Validate(); err != nil {
		return err
	}

	t := c.Tournaments
	if t.DefaultMinParticipants < 1 || t.DefaultMinParticipants > t.DefaultMaxParticipants {
		return fmt.Errorf("tournament participant defaults must satisfy 1 <= min <= max")
	}

	if c.Email.Enabled {
		if c.Email.Region == "" || c.Email.Sender == "" {
			return fmt.Errorf("email region and sender are required when email is enabled")
		}
		if c.Email.AccessKeyID == "" || c.Email.SecretAccessKey == "" {
			return fmt.Errorf("AWS credentials are required when email is enabled")
		}
	}
	if c.Events.Enabled {
		if c.Events.URL == "" {
			return fmt.Errorf("AMQP_URL is required when events are enabled")
		}
		if strings.TrimSpace(c.Events.Queue) == "" {
			return fmt.Errorf("events queue is required when events are enabled")
		}
	}

	if c.Scheduler.ReminderCron != "" {
		if _, err := cron.ParseStandard(c.Scheduler.ReminderCron); err != nil {
			return fmt.Errorf("invalid reminder cron %q: %w", c.Scheduler.ReminderCron, err)
		}
	}
	if c.Scheduler.ReminderHoursBefore < 0 {
		return fmt.Errorf("reminder hours must not be negative")
	}
	if c.RateLimit.WritesPerHour < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}

	switch c.Directory.Provider {
	case "", "store":
	case "cognito":
		if c.Directory.UserPoolID == "" {
			return fmt.Errorf("directory user_pool_id is required for cognito")
		}
	default:
		return fmt.Errorf("unsupported directory provider: %s", c.Directory.Provider)
	}

	return nil
}

func (t TariffConfig) Validate() error {
	if t.DayRate < 0 || t.NightRate < 0 {
		return fmt.Errorf("tariff rates must not be negative")
	}
	if t.BoundaryHour < 0 || t.BoundaryHour > 24 {
		return fmt.Errorf("tariff boundary hour must be between 0 and 24")
	}
	return nil
}

func (f FacilityConfig) Validate() error {
	if f.Courts <= 0 {
		return fmt.Errorf("facility must have at least one court")
	}
	if f.OpeningHour < 0 || f.ClosingHour > 24 || f.OpeningHour >= f.ClosingHour {
		return fmt.Errorf("facility opening hours must satisfy 0 <= opening < closing <= 24")
	}
	if f.SlotMinutes <= 0 || 60%f.SlotMinutes != 0 {
		return fmt.Errorf("slot minutes must divide an hour evenly")
	}
	if f.MinDurationHours <= 0 || f.MaxDurationHours < f.MinDurationHours {
		return fmt.Errorf("duration bounds must satisfy 0 < min <= max")
	}
	return nil
}
