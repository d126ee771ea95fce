// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
)

// Config holds all runtime settings.
type Config struct {
	Addr        string
	DatabaseURL string

	// Connection parameters for the backup tools, which shell out to
	// pg_dump and psql rather than reuse the pool.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	BackupDir  string
	PGDumpPath string
	PSQLPath   string

	CookieSecure bool

	// Single sign-on via an OpenID Connect provider. Disabled unless
	// SSOIssuer is set.
	SSOIssuer       string
	SSOClientID     string
	SSOClientSecret string
	SSORedirectURL  string

	// Offsite backup copies. Disabled unless S3Bucket is set.
	S3Region       string
	S3Bucket       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// Load reads the configuration from the environment. DATABASE_URL is
// the only required setting.
func Load() (*Config, error) {
	c := &Config{
		Addr:        env("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		DBHost:     env("DB_HOST", "localhost"),
		DBPort:     env("DB_PORT", "5432"),
		DBUser:     env("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     env("DB_NAME", "mytasker"),

		BackupDir:  env("BACKUP_DIR", "backups"),
		PGDumpPath: os.Getenv("PG_DUMP_PATH"),
		PSQLPath:   os.Getenv("PSQL_PATH"),

		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",

		SSOIssuer:       os.Getenv("SSO_ISSUER"),
		SSOClientID:     os.Getenv("SSO_CLIENT_ID"),
		SSOClientSecret: os.Getenv("SSO_CLIENT_SECRET"),
		SSORedirectURL:  os.Getenv("SSO_REDIRECT_URL"),

		S3Region:       env("S3_REGION", "us-east-1"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if c.SSOEnabled() && (c.SSOClientID == "" || c.SSOClientSecret == "" || c.SSORedirectURL == "") {
		return nil, fmt.Errorf("SSO_ISSUER is set but SSO_CLIENT_ID, SSO_CLIENT_SECRET, or SSO_REDIRECT_URL is missing")
	}
	return c, nil
}

// SSOEnabled reports whether OIDC login is configured.
func (c *Config) SSOEnabled() bool { return c.SSOIssuer != "" }

// S3Enabled reports whether offsite backup copies are configured.
func (c *Config) S3Enabled() bool { return c.S3Bucket != "" }

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
