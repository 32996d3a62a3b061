package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Capacity  CapacityConfig  `yaml:"capacity"`
	Oracle    OracleConfig    `yaml:"oracle"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// TransportConfig selects how the MCP server is exposed.
type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// CapacityConfig holds the user's working-time settings. Values are clamped
// here so the capacity math never has to defend against malformed input.
type CapacityConfig struct {
	WorkHoursPerDay    int `yaml:"work_hours_per_day" json:"work_hours_per_day"`
	BufferPercent      int `yaml:"buffer_percent" json:"buffer_percent"`
	BreakMinutesPerDay int `yaml:"break_minutes_per_day" json:"break_minutes_per_day"`
	WorkDaysPerWeek    int `yaml:"work_days_per_week" json:"work_days_per_week"`
	DefaultTaskMinutes int `yaml:"default_task_minutes" json:"default_task_minutes"`
	DayStartHour       int `yaml:"day_start_hour" json:"day_start_hour"`
	DayEndHour         int `yaml:"day_end_hour" json:"day_end_hour"`
}

// OracleConfig configures the optional natural-language oracle.
type OracleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

// DefaultCapacity returns the documented defaults: 8h days, 20% buffer,
// 60 break minutes, 5 work days, 60-minute flat task estimate.
func DefaultCapacity() CapacityConfig {
	return CapacityConfig{
		WorkHoursPerDay:    8,
		BufferPercent:      20,
		BreakMinutesPerDay: 60,
		WorkDaysPerWeek:    5,
		DefaultTaskMinutes: 60,
		DayStartHour:       9,
		DayEndHour:         18,
	}
}

// Clamp bounds every capacity field to its sane range.
func (c CapacityConfig) Clamp() CapacityConfig {
	c.WorkHoursPerDay = clampInt(c.WorkHoursPerDay, 1, 24)
	c.BufferPercent = clampInt(c.BufferPercent, 0, 50)
	c.BreakMinutesPerDay = clampInt(c.BreakMinutesPerDay, 0, 480)
	c.WorkDaysPerWeek = clampInt(c.WorkDaysPerWeek, 1, 7)
	c.DefaultTaskMinutes = clampInt(c.DefaultTaskMinutes, 5, 480)
	c.DayStartHour = clampInt(c.DayStartHour, 0, 23)
	c.DayEndHour = clampInt(c.DayEndHour, c.DayStartHour+1, 24)
	return c
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "tiller.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Capacity: DefaultCapacity(),
		Oracle: OracleConfig{
			Enabled: false,
			Model:   "gpt-4.1-mini",
		},
	}

	if path := os.Getenv("TILLER_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("TILLER_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TILLER_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TILLER_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("TILLER_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if token := os.Getenv("TILLER_AUTH_TOKEN"); token != "" {
		cfg.Server.AuthToken = token
	}
	if dbPath := os.Getenv("TILLER_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TILLER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if os.Getenv("TILLER_ORACLE_ENABLED") == "true" {
		cfg.Oracle.Enabled = true
	}
	if model := os.Getenv("TILLER_ORACLE_MODEL"); model != "" {
		cfg.Oracle.Model = model
	}

	cfg.Capacity = cfg.Capacity.Clamp()

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
