package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, loaded from a yaml file per
// APP_ENV with environment-variable overrides for secrets.
type Config struct {
	App struct {
		Env  string `yaml:"env"`
		Port int    `yaml:"port"`
	} `yaml:"app"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	JWT struct {
		Secret        string `yaml:"secret"`
		Issuer        string `yaml:"issuer"`
		ExpiryMinutes int    `yaml:"expiry_minutes"`
	} `yaml:"jwt"`

	Revision struct {
		ReasonMinLength    int `yaml:"reason_min_length"`
		ReviewDeadlineDays int `yaml:"review_deadline_days"`
	} `yaml:"revision"`
}

// Load reads the yaml config file and applies env overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.App.Env = "local"
	cfg.App.Port = 8080
	cfg.Database.Port = 3306
	cfg.Redis.Port = 6379
	cfg.Redis.PoolSize = 10
	cfg.JWT.Issuer = "kb-approval-backend"
	cfg.JWT.ExpiryMinutes = 60
	cfg.Revision.ReasonMinLength = 10
	cfg.Revision.ReviewDeadlineDays = 7

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Secrets always come from the environment when set
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = port
		}
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}

	return cfg, nil
}

// JWTExpiry returns the configured token lifetime.
func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWT.ExpiryMinutes) * time.Minute
}
