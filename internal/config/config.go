package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds process-wide settings resolved from the environment.
// Only the DB URL is mandatory; Redis (cache + background queue) is optional
// and the server degrades gracefully without it.
type Config struct {
	Env              string `mapstructure:"ENV"`
	Port             string `mapstructure:"PORT"`
	DatabaseURL      string `mapstructure:"DB_URL"`
	RedisURL         string `mapstructure:"REDIS_URL"`
	AllowedOrigins   string `mapstructure:"ALLOWED_ORIGINS"`
	AsynqConcurrency int    `mapstructure:"ASYNQ_CONCURRENCY"`
}

// Load reads configuration from environment variables (a .env file, if any,
// is loaded by main before this runs).
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ASYNQ_CONCURRENCY", 10)

	// AutomaticEnv alone does not surface env vars through Unmarshal,
	// each key has to be bound explicitly.
	for _, key := range []string{"ENV", "PORT", "DB_URL", "REDIS_URL", "ALLOWED_ORIGINS", "ASYNQ_CONCURRENCY"} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	return &cfg, nil
}

// Origins splits ALLOWED_ORIGINS into a slice, empty when unset.
func (c *Config) Origins() []string {
	if strings.TrimSpace(c.AllowedOrigins) == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
