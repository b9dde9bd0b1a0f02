package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// dsnPair appends one key=value pair in the keyword/value DSN format.
// Values containing spaces, quotes, or backslashes are single-quoted with
// the quote and backslash characters escaped, so the parser never splits
// them.
func dsnPair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(key)
	b.WriteByte('=')
	if value == "" || strings.ContainsAny(value, ` '\`) {
		value = strings.ReplaceAll(value, `\`, `\\`)
		value = strings.ReplaceAll(value, `'`, `\'`)
		value = "'" + value + "'"
	}
	b.WriteString(value)
}

// PostgresConnectionString returns the keyword/value DSN the pgx pool
// connects with.
func (c *Config) PostgresConnectionString() string {
	var b strings.Builder
	dsnPair(&b, "host", c.PostgresHost)
	dsnPair(&b, "port", strconv.Itoa(c.PostgresPort))
	dsnPair(&b, "user", c.PostgresUser)
	dsnPair(&b, "password", c.PostgresPassword)
	dsnPair(&b, "dbname", c.PostgresDBName)
	dsnPair(&b, "sslmode", c.PostgresSSLMode)
	return b.String()
}

// MigrateURL returns the database URL for golang-migrate, using the pgx/v5
// migrate driver scheme. url.URL handles encoding of special characters in
// credentials.
func (c *Config) MigrateURL() string {
	u := &url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     c.PostgresDBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.PostgresSSLMode),
	}
	return u.String()
}

// parseDatabaseURL folds the DATABASE_URL environment variable, when set,
// into the postgres_* fields. The single-variable form is the common option
// in cloud deployments and overrides the individual settings.
func (c *Config) parseDatabaseURL() error {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		return nil
	}
	return c.applyDatabaseURL(raw)
}

// applyDatabaseURL overwrites the postgres_* fields with every component
// raw provides. Components absent from the URL keep their current values.
func (c *Config) applyDatabaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid DATABASE_URL format: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://, got %q", parsed.Scheme)
	}

	if host := parsed.Hostname(); host != "" {
		c.PostgresHost = host
	}
	if portStr := parsed.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid port in DATABASE_URL: %w", err)
		}
		c.PostgresPort = port
	}
	if parsed.User != nil {
		if user := parsed.User.Username(); user != "" {
			c.PostgresUser = user
		}
		if password, ok := parsed.User.Password(); ok {
			c.PostgresPassword = password
		}
	}
	if name := strings.TrimPrefix(parsed.Path, "/"); name != "" {
		c.PostgresDBName = name
	}
	if sslmode := parsed.Query().Get("sslmode"); sslmode != "" {
		c.PostgresSSLMode = sslmode
	}
	return nil
}
