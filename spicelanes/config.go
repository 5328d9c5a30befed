package spicelanes

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	DB       DBConfig       `toml:"db"`
	WorldApp WorldAppConfig `toml:"worldapp"`
	Spaces   SpacesConfig   `toml:"spaces"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// Requests per minute per client IP. Zero disables rate limiting.
	RateLimit int `toml:"rate_limit"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DBConfig struct {
	// "postgres" or "memory". The memory driver keeps everything in process
	// and is meant for local development only.
	Driver       string `toml:"driver"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

// WorldAppConfig describes the optional super-app integration. Enabled is an
// explicit capability flag resolved once at startup; the server never probes
// the host environment at request time.
type WorldAppConfig struct {
	Enabled   bool   `toml:"enabled"`
	AppID     string `toml:"app_id"`
	APIKey    string `toml:"api_key"`
	PortalURL string `toml:"portal_url"`
}

type SpacesConfig struct {
	Enabled  bool   `toml:"enabled"`
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	Root     string `toml:"root"`
	Interval int    `toml:"interval_minutes"`
}
