package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every environment-driven setting the services read. Each
// service validates only the fields it needs via the Require* helpers; the
// signing secret is always externalized, never compiled in.
type Config struct {
	Port string

	DatabaseDSN     string
	DBMaxOpenConns  int
	DBConnLifetime  time.Duration
	MigrateOnStart  bool

	JWTSecret string
	TokenTTL  time.Duration

	// Optional hosted identity provider; when JWKSURL is set the services
	// verify RS256 tokens against it instead of the shared secret.
	JWKSURL  string
	Audience string
	Issuer   string

	UserServiceURL    string
	PeerClientTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	DedupeTTL     time.Duration

	Debug bool
}

// Load reads configuration from the environment. Missing required values are
// reported by the service mains, not here.
func Load() Config {
	return Config{
		Port: envString("PORT", "8080"),

		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 10),
		DBConnLifetime: envDur("DB_CONN_LIFETIME", 30*time.Minute),
		MigrateOnStart: envBool("MIGRATE_ON_START", true),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  envDur("TOKEN_TTL", time.Hour),

		JWKSURL:  os.Getenv("AUTH_JWKS_URL"),
		Audience: os.Getenv("AUTH_AUDIENCE"),
		Issuer:   os.Getenv("AUTH_ISSUER"),

		UserServiceURL:    os.Getenv("USER_SERVICE_URL"),
		PeerClientTimeout: envDur("PEER_CLIENT_TIMEOUT", 10*time.Second),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DedupeTTL:     envDur("DEDUPE_TTL", 24*time.Hour),

		Debug: envBool("DEBUG", false),
	}
}

// RequireDB fails when no database DSN is configured.
func (c Config) RequireDB() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("missing DATABASE_DSN")
	}
	return nil
}

// RequireAuth fails unless either a shared secret or a JWKS endpoint is
// configured.
func (c Config) RequireAuth() error {
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return fmt.Errorf("missing JWT_SECRET (or AUTH_JWKS_URL)")
	}
	return nil
}

// RequireUserService fails when the user-service base URL is unset.
func (c Config) RequireUserService() error {
	if c.UserServiceURL == "" {
		return fmt.Errorf("missing USER_SERVICE_URL")
	}
	return nil
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDur(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envBool(name string, def bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
