package env

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"app"`
	Log struct {
		Level int `mapstructure:"level"`
	} `mapstructure:"log"`
	Database struct {
		DSN  string `mapstructure:"dsn"`
		Pool struct {
			Idle     int `mapstructure:"idle"`
			Max      int `mapstructure:"max"`
			Lifetime int `mapstructure:"lifetime"`
		} `mapstructure:"pool"`
	} `mapstructure:"database"`
	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		Pool     struct {
			Size        int `mapstructure:"size"`
			MinIdle     int `mapstructure:"min_idle"`
			MaxIdle     int `mapstructure:"max_idle"`
			Lifetime    int `mapstructure:"lifetime"`
			IdleTimeout int `mapstructure:"idle_timeout"`
		} `mapstructure:"pool"`
	} `mapstructure:"redis"`
	Token struct {
		Secret         string `mapstructure:"secret"`
		TTLMinutes     int    `mapstructure:"ttl_minutes"`
		SlidingRenewal bool   `mapstructure:"sliding_renewal"`
	} `mapstructure:"token"`
	Cache struct {
		Size       int `mapstructure:"size"`
		TTLSeconds int `mapstructure:"ttl_seconds"`
	} `mapstructure:"cache"`
	Monitoring struct {
		Enabled bool `mapstructure:"enabled"`
		Otel    struct {
			Host string `mapstructure:"host"`
		} `mapstructure:"otel"`
	} `mapstructure:"monitoring"`
}

func NewConfig() *Config {
	config := viper.New()

	config.SetConfigName("config")
	config.SetConfigType("yml")
	config.AddConfigPath("./../")
	config.AddConfigPath("./")

	if err := config.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error reading config file: %w", err))
	}

	cfg := new(Config)
	if err := config.Unmarshal(cfg); err != nil {
		panic(fmt.Errorf("fatal error unmarshaling config: %w", err))
	}

	return cfg
}

// GetTokenTTL returns the session token lifetime, defaulting to 24h when the
// config leaves it unset.
func (c *Config) GetTokenTTL() time.Duration {
	if c.Token.TTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Token.TTLMinutes) * time.Minute
}

func (c *Config) GetCacheTTL() time.Duration {
	if c.Cache.TTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) GetCacheSize() int {
	if c.Cache.Size <= 0 {
		return 1024
	}
	return c.Cache.Size
}
