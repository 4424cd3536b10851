package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"velohub/internal/analysis"
)

// Config is the application configuration, read from a YAML file with
// environment-variable overrides.
type Config struct {
	Env      string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Strava   StravaConfig   `yaml:"strava"`
	Engine   EngineConfig   `yaml:"engine"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Address         string        `yaml:"address" env:"SERVER_ADDRESS" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"readTimeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env-default:"10s"`
}

// Addr returns the listen address in host:port form
func (c ServerConfig) Addr() string {
	return c.Address + ":" + c.Port
}

// DatabaseConfig holds the SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DB_PATH" env-default:""`
}

// CacheConfig holds the in-memory report cache settings
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" env-default:"true"`
	SizeBytes int           `yaml:"sizeBytes" env-default:"33554432"`
	TTL       time.Duration `yaml:"ttl" env-default:"60s"`
}

// MetricsConfig holds the Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	Path    string `yaml:"path" env-default:"/metrics"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `yaml:"clientId" env:"STRAVA_CLIENT_ID" env-default:""`
	ClientSecret string `yaml:"clientSecret" env:"STRAVA_CLIENT_SECRET" env-default:""`
	RefreshToken string `yaml:"refreshToken" env:"STRAVA_REFRESH_TOKEN" env-default:""`
}

// EngineConfig tunes the analytics engine. Zero values fall back to the
// engine defaults, so an empty section is valid.
type EngineConfig struct {
	DefaultFTP          float64 `yaml:"defaultFtp" env-default:"0"`
	HeadlineWindowDays  int     `yaml:"headlineWindowDays" env-default:"0"`
	LoadLookbackDays    int     `yaml:"loadLookbackDays" env-default:"0"`
	WearLookbackDays    int     `yaml:"wearLookbackDays" env-default:"0"`
	ChunkSize           int     `yaml:"chunkSize" env-default:"0"`
	RecentActivitiesCap int     `yaml:"recentActivitiesCap" env-default:"0"`
}

// Params maps the engine section onto analysis parameters, keeping the
// defaults for anything left unset.
func (e EngineConfig) Params() analysis.Params {
	p := analysis.DefaultParams()
	if e.DefaultFTP > 0 {
		p.DefaultFTP = e.DefaultFTP
	}
	if e.HeadlineWindowDays > 0 {
		p.HeadlineWindowDays = e.HeadlineWindowDays
	}
	if e.LoadLookbackDays > 0 {
		p.LoadLookbackDays = e.LoadLookbackDays
	}
	if e.WearLookbackDays > 0 {
		p.WearLookbackDays = e.WearLookbackDays
	}
	if e.ChunkSize > 0 {
		p.ChunkSize = e.ChunkSize
	}
	if e.RecentActivitiesCap > 0 {
		p.RecentActivitiesCap = e.RecentActivitiesCap
	}
	return p
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must be set")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive")
	}
	if c.Cache.Enabled && c.Cache.SizeBytes <= 0 {
		return fmt.Errorf("cache size must be positive when the cache is enabled")
	}
	return nil
}

// Load reads the config file at path, applying environment overrides.
// A missing file is not an error; the environment alone must then supply
// anything without a default.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
			return &cfg, nil
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config from environment: %w", err)
	}
	return &cfg, nil
}
