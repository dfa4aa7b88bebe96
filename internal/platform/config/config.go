package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Tasks     TasksConfig     `mapstructure:"tasks"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Retention RetentionConfig `mapstructure:"retention"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Domains   DomainsConfig   `mapstructure:"domains"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type CacheConfig struct {
	LinkTTL time.Duration `mapstructure:"link_ttl"`
}

type TasksConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type RateLimitConfig struct {
	RedirectPerMinute int `mapstructure:"redirect_per_minute"`
}

type RetentionConfig struct {
	PurgeGrace    time.Duration `mapstructure:"purge_grace"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type DomainsConfig struct {
	ShortDomain string `mapstructure:"short_domain"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.store_timeout", "2s")
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("cache.link_ttl", "24h")
	viper.SetDefault("tasks.workers", 4)
	viper.SetDefault("tasks.queue_size", 1024)
	viper.SetDefault("rate_limit.redirect_per_minute", 600)
	viper.SetDefault("retention.purge_grace", "720h")
	viper.SetDefault("retention.sweep_interval", "1h")
	viper.SetDefault("logging.level", "info")
}
