// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs.
type Config struct {
	Riot    RiotConfig    `mapstructure:"riot"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	DB      DBConfig      `mapstructure:"db"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RiotConfig controls API endpoints, pacing, and retry bounds.
type RiotConfig struct {
	PlatformHost   string `mapstructure:"platform_host"`
	RegionHost     string `mapstructure:"region_host"`
	DataDragonURL  string `mapstructure:"data_dragon_url"`
	RequestDelayMs int    `mapstructure:"request_delay_ms"`
	RetryCount     int    `mapstructure:"retry_count"`
	RetryWaitSec   int    `mapstructure:"retry_wait_seconds"`
	TimeoutSec     int    `mapstructure:"timeout_seconds"`
}

// CrawlConfig pairs credentials with seed players and sets supervision knobs.
// Credentials and seed players must be equal-length; each worker gets one of
// each.
type CrawlConfig struct {
	Credentials     []string `mapstructure:"credentials"`
	SeedPlayers     []string `mapstructure:"seed_players"`
	RestartWaitSec  int      `mapstructure:"restart_wait_seconds"`
	StarvationLimit int      `mapstructure:"starvation_limit"`
}

// DBConfig controls the Postgres pool.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// ServerConfig controls the status/metrics HTTP listener.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RIFTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("riot.platform_host", "https://na1.api.riotgames.com")
	v.SetDefault("riot.region_host", "https://americas.api.riotgames.com")
	v.SetDefault("riot.data_dragon_url", "https://ddragon.leagueoflegends.com/cdn/12.19.1/data/en_US/champion.json")
	v.SetDefault("riot.request_delay_ms", 1200)
	v.SetDefault("riot.retry_count", 5)
	v.SetDefault("riot.retry_wait_seconds", 5)
	v.SetDefault("riot.timeout_seconds", 15)
	v.SetDefault("crawl.restart_wait_seconds", 30)
	v.SetDefault("crawl.starvation_limit", 3)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits. A config with no
// usable credential cannot crawl at all and fails fast here.
func (c Config) Validate() error {
	if len(c.Crawl.Credentials) == 0 {
		return fmt.Errorf("crawl.credentials must not be empty")
	}
	if len(c.Crawl.SeedPlayers) != len(c.Crawl.Credentials) {
		return fmt.Errorf("crawl.seed_players must match crawl.credentials in length (%d != %d)",
			len(c.Crawl.SeedPlayers), len(c.Crawl.Credentials))
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.Riot.RequestDelayMs <= 0 {
		return fmt.Errorf("riot.request_delay_ms must be > 0")
	}
	if c.Riot.RetryCount <= 0 {
		return fmt.Errorf("riot.retry_count must be > 0")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// RequestDelay returns the configured inter-request pacing.
func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.Riot.RequestDelayMs) * time.Millisecond
}

// RetryWait returns the wait between transient retries.
func (c Config) RetryWait() time.Duration {
	return time.Duration(c.Riot.RetryWaitSec) * time.Second
}

// RestartWait returns the pause between crawl cycles.
func (c Config) RestartWait() time.Duration {
	return time.Duration(c.Crawl.RestartWaitSec) * time.Second
}
