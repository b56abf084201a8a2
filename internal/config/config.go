// Package config loads the warnsync configuration file once at startup.
// The result is an immutable value handed to each component; nothing reads
// configuration through globals.
package config

import (
	"fmt"
	"strings"
	"time"

	dbconnector "warnsync"
)

const (
	EnvPrefix        = "WARNSYNC"
	EncryptionKeyEnv = EnvPrefix + "_ENCRYPTION_KEY"
)

type Config struct {
	DB   dbconnector.ConnectionConfig `mapstructure:"db"`
	Path string                       `mapstructure:"path"`
	SQL  SQLConfig                    `mapstructure:"sql"`
	// WarnTypeID scopes the sync delete/insert to one warning category.
	// Left unset, the delete statement takes no parameters and the insert
	// binds five.
	WarnTypeID *int        `mapstructure:"warn_type_id"`
	Poll       PollConfig  `mapstructure:"poll"`
	Parse      ParseConfig `mapstructure:"parse"`
	Log        LogConfig   `mapstructure:"log"`
	HTTP       HTTPConfig  `mapstructure:"http"`
	NATS       NATSConfig  `mapstructure:"nats"`
}

// SQLConfig holds the four statement templates. The insert key keeps the
// historical spelling inster_sql; insert_sql is accepted as well.
type SQLConfig struct {
	Select      string `mapstructure:"select_sql"`
	Update      string `mapstructure:"update_sql"`
	Insert      string `mapstructure:"inster_sql"`
	InsertAlias string `mapstructure:"insert_sql"`
	Delete      string `mapstructure:"delete_sql"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	// Timeout bounds each database operation.
	Timeout time.Duration `mapstructure:"timeout"`
	// Watch triggers an early tick when the feed directory changes.
	Watch bool `mapstructure:"watch"`
}

type ParseConfig struct {
	Delimiter      string `mapstructure:"delimiter"`
	OnNumericError string `mapstructure:"on_numeric_error"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	// Addr enables the status server when set, e.g. ":8091".
	Addr string `mapstructure:"addr"`
}

type NATSConfig struct {
	// URL enables sync notifications when set.
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// ConfigError is returned for any configuration that cannot be used. It is
// the only fatal error of the program.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// String renders the config for the startup log with credentials masked.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "db={%s} path=%s", c.DB.String(), c.Path)
	if c.WarnTypeID != nil {
		fmt.Fprintf(&b, " warn_type_id=%d", *c.WarnTypeID)
	}
	fmt.Fprintf(&b, " poll.interval=%s poll.timeout=%s poll.watch=%t", c.Poll.Interval, c.Poll.Timeout, c.Poll.Watch)
	fmt.Fprintf(&b, " parse.delimiter=%q parse.on_numeric_error=%s", c.Parse.Delimiter, c.Parse.OnNumericError)
	if c.HTTP.Addr != "" {
		fmt.Fprintf(&b, " http.addr=%s", c.HTTP.Addr)
	}
	if c.NATS.URL != "" {
		fmt.Fprintf(&b, " nats.subject=%s", c.NATS.Subject)
	}
	return b.String()
}
