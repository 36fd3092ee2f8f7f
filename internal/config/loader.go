package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from an optional YAML file and the
// environment. Environment variables use the FOODTRACKER_ prefix with
// underscores for nesting, e.g. FOODTRACKER_AUTH_SECRET.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}
	v.SetDefault("environment", env)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FOODTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine; the environment alone can configure a
		// development instance.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "foodtracker")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "foodtracker")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)

	// Viper only sees environment variables for keys it knows about, so
	// secrets get explicit empty defaults.
	v.SetDefault("auth.secret", "")
	v.SetDefault("csrf.secret", "")
	v.SetDefault("cors.origins", []string{})

	v.SetDefault("auth.issuer", "foodtracker")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "720h")

	v.SetDefault("revocation.cache_staleness", "60s")
	v.SetDefault("revocation.cache_horizon", "24h")
	v.SetDefault("revocation.purge_interval", "24h")

	v.SetDefault("logging.level", "info")
}
