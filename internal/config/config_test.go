package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: courtbook
  port: 9090
tariff:
  day_rate: 300
  night_rate: 450
  boundary_hour: 17
facility:
  courts: 6
`)
	t.Setenv("ADMIN_TOKEN_HASH", "hash")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.App.Port)
	}
	if cfg.Tariff.DayRate != 300 || cfg.Tariff.NightRate != 450 || cfg.Tariff.BoundaryHour != 17 {
		t.Fatalf("unexpected tariff: %+v", cfg.Tariff)
	}
	if cfg.Facility.Courts != 6 {
		t.Fatalf("courts = %d, want 6", cfg.Facility.Courts)
	}
	// untouched defaults survive
	if cfg.Facility.SlotMinutes != 30 || cfg.Database.Driver != "sqlite" {
		t.Fatalf("defaults lost: %+v %+v", cfg.Facility, cfg.Database)
	}
	if cfg.App.AdminTokenHash != "hash" {
		t.Fatalf("admin token hash not loaded from environment")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "no_courts", mutate: func(c *Config) { c.Facility.Courts = 0 }, wantErr: "court"},
		{name: "bad_hours", mutate: func(c *Config) { c.Facility.OpeningHour = 22; c.Facility.ClosingHour = 8 }, wantErr: "opening hours"},
		{name: "bad_slot", mutate: func(c *Config) { c.Facility.SlotMinutes = 25 }, wantErr: "slot minutes"},
		{name: "bad_boundary", mutate: func(c *Config) { c.Tariff.BoundaryHour = 25 }, wantErr: "boundary"},
		{name: "negative_rate", mutate: func(c *Config) { c.Tariff.NightRate = -1 }, wantErr: "negative"},
		{name: "bad_participants", mutate: func(c *Config) { c.Tournaments.DefaultMinParticipants = 20 }, wantErr: "participant"},
		{name: "zero_min_participants", mutate: func(c *Config) { c.Tournaments.DefaultMinParticipants = 0 }, wantErr: "participant"},
		{name: "bad_cron", mutate: func(c *Config) { c.Scheduler.ReminderCron = "every minute" }, wantErr: "cron"},
		{name: "email_without_credentials", mutate: func(c *Config) {
			c.Email.Enabled = true
			c.Email.Region = "us-east-1"
			c.Email.Sender = "courts@example.com"
		}, wantErr: "AWS credentials"},
		{name: "events_without_url", mutate: func(c *Config) { c.Events.Enabled = true }, wantErr: "AMQP_URL"},
		{name: "negative_rate_limit", mutate: func(c *Config) { c.RateLimit.WritesPerHour = -1 }, wantErr: "rate limit"},
		{name: "cognito_without_pool", mutate: func(c *Config) { c.Directory.Provider = "cognito" }, wantErr: "user_pool_id"},
		{name: "unknown_directory", mutate: func(c *Config) { c.Directory.Provider = "ldap" }, wantErr: "directory provider"},
		{name: "unsupported_driver", mutate: func(c *Config) { c.Database.Driver = "turso" }, wantErr: "unsupported"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, test.wantErr)
			}
		})
	}
}
