package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"time"
)

const minSecretLength = 32

type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Auth        AuthConfig       `mapstructure:"auth"`
	CSRF        CSRFConfig       `mapstructure:"csrf"`
	Revocation  RevocationConfig `mapstructure:"revocation"`
	CORS        CORSConfig       `mapstructure:"cors"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN renders the config as a pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.User, c.Password, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.DBName, c.SSLMode)
}

type AuthConfig struct {
	// Secret signs HS256 access tokens. Required in production.
	Secret          string        `mapstructure:"secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type CSRFConfig struct {
	// Secret keys the HMAC used by the CSRF token digest. Required in
	// production.
	Secret string `mapstructure:"secret"`
}

type RevocationConfig struct {
	// CacheStaleness bounds how far the in-memory revocation cache may
	// lag the store before a check forces a refresh.
	CacheStaleness time.Duration `mapstructure:"cache_staleness"`
	// CacheHorizon is the forward window of token expiries loaded into
	// the cache on refresh.
	CacheHorizon time.Duration `mapstructure:"cache_horizon"`
	// PurgeInterval is how often expired rows are swept from the store.
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate enforces the startup posture: missing signing or CSRF
// secrets are fatal in production and generated (with a warning) in
// development. Returns the warnings to emit once a logger exists.
func (c *Config) Validate() ([]string, error) {
	var warnings []string

	if c.IsProduction() {
		if len(c.Auth.Secret) < minSecretLength {
			return nil, fmt.Errorf("auth.secret must be set to at least %d characters in production (generate with: openssl rand -hex 32)", minSecretLength)
		}
		if len(c.CSRF.Secret) < minSecretLength {
			return nil, fmt.Errorf("csrf.secret must be set to at least %d characters in production (generate with: openssl rand -hex 32)", minSecretLength)
		}
		if len(c.CORS.Origins) == 0 {
			return nil, fmt.Errorf("cors.origins must be set in production")
		}
		return nil, nil
	}

	if c.Auth.Secret == "" {
		c.Auth.Secret = randomSecret()
		warnings = append(warnings, "auth.secret not set; generated a random development secret, sessions will not survive restarts")
	}
	if c.CSRF.Secret == "" {
		c.CSRF.Secret = randomSecret()
		warnings = append(warnings, "csrf.secret not set; generated a random development secret")
	}
	if len(c.CORS.Origins) == 0 {
		c.CORS.Origins = []string{"http://localhost:3000", "http://localhost:8081"}
		warnings = append(warnings, "cors.origins not set; using development defaults")
	}
	return warnings, nil
}

func randomSecret() string {
	buf := make([]byte, minSecretLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("failed to generate development secret: %v", err))
	}
	return hex.EncodeToString(buf)
}
