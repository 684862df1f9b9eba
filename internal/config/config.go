package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string         `yaml:"addr"`
	JWTSecret     string         `yaml:"jwt_secret"`
	APITimeout    time.Duration  `yaml:"timeout"`
	TokenDuration time.Duration  `yaml:"token_duration"`
	DatabasePath  string         `yaml:"database_path"`
	AdminPassword string         `yaml:"admin_password"`
	Timezone      string         `yaml:"timezone"`
	UploadsDir    string         `yaml:"uploads_dir"`
	SweepCron     string         `yaml:"sweep_cron"`
	Calendar      CalendarConfig `yaml:"calendar"`
}

// CalendarConfig configures the external calendar provider. Sync is
// disabled when ClientEmail is empty.
type CalendarConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TokenURL       string        `yaml:"token_url"`
	CalendarID     string        `yaml:"calendar_id"`
	ClientEmail    string        `yaml:"client_email"`
	PrivateKeyPath string        `yaml:"private_key_path"`
	Timeout        time.Duration `yaml:"timeout"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 12 * time.Hour

	cfg := &Config{
		Addr:          getEnv("PLANNER_ADDR", ":4000"),
		JWTSecret:     getEnv("PLANNER_JWT_SECRET", "supersecretkey"),
		APITimeout:    apiTimeout,
		TokenDuration: tokenDuration,
		DatabasePath:  getEnv("PLANNER_DATABASE_PATH", "planner.db"),
		AdminPassword: getEnv("PLANNER_ADMIN_PASSWORD", "coco"),
		Timezone:      getEnv("PLANNER_TIMEZONE", "Europe/Paris"),
		UploadsDir:    getEnv("PLANNER_UPLOADS_DIR", "uploads"),
		SweepCron:     getEnv("PLANNER_SWEEP_CRON", "0 3 * * *"),
		Calendar: CalendarConfig{
			BaseURL:        getEnv("PLANNER_CALENDAR_BASE_URL", "https://www.googleapis.com/calendar/v3"),
			TokenURL:       getEnv("PLANNER_CALENDAR_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			CalendarID:     getEnv("PLANNER_CALENDAR_ID", ""),
			ClientEmail:    getEnv("PLANNER_CALENDAR_CLIENT_EMAIL", ""),
			PrivateKeyPath: getEnv("PLANNER_CALENDAR_PRIVATE_KEY_PATH", ""),
			Timeout:        30 * time.Second,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Location resolves the configured display timezone. Every component that
// interprets a naive scheduled_at stamp must use this single location.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	return loc, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
