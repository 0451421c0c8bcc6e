// Package config loads, validates and saves the engine's YAML config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/timeshift"
)

// RoleRule adds keywords for a role category used by the role filter.
type RoleRule struct {
	Role string   `yaml:"role" json:"role"`
	Any  []string `yaml:"any" json:"any"`
}

type Search struct {
	Query          string `yaml:"query" json:"query"`
	Location       string `yaml:"location" json:"location"`
	Remote         bool   `yaml:"remote" json:"remote"`
	EmploymentType string `yaml:"employment_type" json:"employment_type"`
	DatePosted     string `yaml:"date_posted" json:"date_posted"`
	Limit          int    `yaml:"limit" json:"limit"`
}

type Board struct {
	Companies []domain.Company `yaml:"companies" json:"companies"`
}

type Config struct {
	App struct {
		Port     int    `yaml:"port" json:"port"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		UserID   string `yaml:"user_id" json:"user_id"`
		Timezone string `yaml:"timezone" json:"timezone"`
	} `yaml:"app" json:"app"`

	Jobs struct {
		PerDay       int `yaml:"per_day" json:"per_day"`
		DisplayLimit int `yaml:"display_limit" json:"display_limit"`
	} `yaml:"jobs" json:"jobs"`

	Schedule struct {
		WorkStart     string `yaml:"work_start" json:"work_start"`
		WorkEnd       string `yaml:"work_end" json:"work_end"`
		BufferMinutes int    `yaml:"buffer_minutes" json:"buffer_minutes"`
		AutoShift     bool   `yaml:"auto_shift" json:"auto_shift"`
	} `yaml:"schedule" json:"schedule"`

	Sources struct {
		Enabled  []string `yaml:"enabled" json:"enabled"`
		Search   Search   `yaml:"search" json:"search"`
		Simplify struct {
			URL string `yaml:"url" json:"url"`
		} `yaml:"simplify" json:"simplify"`
		Adzuna struct {
			Country string `yaml:"country" json:"country"`
		} `yaml:"adzuna" json:"adzuna"`
		Greenhouse Board `yaml:"greenhouse" json:"greenhouse"`
		Lever      Board `yaml:"lever" json:"lever"`
	} `yaml:"sources" json:"sources"`

	Polling struct {
		FetchCron      string  `yaml:"fetch_cron" json:"fetch_cron"`
		TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		RetentionDays  int     `yaml:"retention_days" json:"retention_days"`
		HostRPS        float64 `yaml:"host_rps" json:"host_rps"`
		HostBurst      int     `yaml:"host_burst" json:"host_burst"`
	} `yaml:"polling" json:"polling"`

	Filters struct {
		LocationsBlock []string `yaml:"locations_block" json:"locations_block"`
		RedFlags       []string `yaml:"red_flags" json:"red_flags"`
	} `yaml:"filters" json:"filters"`

	Scoring struct {
		RoleKeywords []RoleRule `yaml:"role_keywords" json:"role_keywords"`
	} `yaml:"scoring" json:"scoring"`
}

// Default returns the config used for keys a file leaves out.
func Default() Config {
	var c Config
	c.App.Port = 38471
	c.App.UserID = "local"
	c.Jobs.PerDay = 5
	c.Jobs.DisplayLimit = 5
	c.Schedule.WorkStart = "09:00"
	c.Schedule.WorkEnd = "17:00"
	c.Schedule.BufferMinutes = 15
	c.Schedule.AutoShift = true
	c.Sources.Enabled = []string{"simplify-jobs", "jsearch", "remotive", "adzuna"}
	c.Sources.Search.Query = "software engineer"
	c.Sources.Search.DatePosted = "week"
	c.Sources.Search.Limit = 50
	c.Sources.Adzuna.Country = "us"
	c.Polling.FetchCron = "@every 60m"
	c.Polling.TimeoutSeconds = 120
	c.Polling.RetentionDays = 90
	c.Polling.HostRPS = 1
	c.Polling.HostBurst = 2
	return c
}

// Load reads path over Default, so missing keys keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides the port and data dir from DAYMARK_PORT and
// DAYMARK_DATA_DIR.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("DAYMARK_PORT")); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DAYMARK_PORT: %w", err)
		}
		cfg.App.Port = p
	}
	if v := strings.TrimSpace(os.Getenv("DAYMARK_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
	return nil
}

// Location returns the configured timezone, or Local when unset or unknown.
func (c Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RoleOverrides returns the scoring rules keyed by role name.
func (c Config) RoleOverrides() map[string][]string {
	if len(c.Scoring.RoleKeywords) == 0 {
		return nil
	}
	out := make(map[string][]string, len(c.Scoring.RoleKeywords))
	for _, r := range c.Scoring.RoleKeywords {
		out[r.Role] = append(out[r.Role], r.Any...)
	}
	return out
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Polling.TimeoutSeconds) * time.Second
}

// Window is the working-hours window on date (YYYY-MM-DD) in the
// configured timezone.
func (c Config) Window(date string) (timeshift.Window, error) {
	day, err := time.ParseInLocation("2006-01-02", date, c.Location())
	if err != nil {
		return timeshift.Window{}, err
	}
	return timeshift.Window{
		Date:          day,
		Start:         c.Schedule.WorkStart,
		End:           c.Schedule.WorkEnd,
		BufferMinutes: c.Schedule.BufferMinutes,
	}, nil
}
