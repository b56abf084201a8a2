package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"warnsync/internal/feed"
)

const encryptedPrefix = "enc:"

// Load reads the JSON (or YAML/TOML, by extension) file at path, applies
// defaults and WARNSYNC_* environment overrides, decrypts the database
// password when needed and validates the result. Every failure is a
// *ConfigError.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, &ConfigError{Path: path, Err: errors.Wrap(err, "bind env")}
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Path: path, Err: errors.Wrap(err, "read config")}
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook,
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, &ConfigError{Path: path, Err: errors.Wrap(err, "decode config")}
	}
	if cfg.SQL.Insert == "" {
		cfg.SQL.Insert = cfg.SQL.InsertAlias
	}
	if strings.HasPrefix(cfg.DB.Password, encryptedPrefix) {
		plain, err := decryptPassword(strings.TrimPrefix(cfg.DB.Password, encryptedPrefix), os.Getenv(EncryptionKeyEnv))
		if err != nil {
			return nil, &ConfigError{Path: path, Err: errors.Wrap(err, "decrypt db.password")}
		}
		cfg.DB.Password = plain
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("poll.interval", "60s")
	v.SetDefault("poll.timeout", "30s")
	v.SetDefault("poll.watch", false)
	v.SetDefault("parse.delimiter", feed.DefaultDelimiter)
	v.SetDefault("parse.on_numeric_error", string(feed.PolicyAbort))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("http.addr", "")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "warnsync.synced")
}

// envKeys have no default, so AutomaticEnv alone would not see them when the
// file leaves them out.
var envKeys = []string{
	"db.type", "db.host", "db.port", "db.user", "db.password", "db.database",
	"db.sslmode", "db.driver", "db.dsn",
	"path", "warn_type_id",
	"sql.select_sql", "sql.update_sql", "sql.inster_sql", "sql.insert_sql", "sql.delete_sql",
}

func bindEnv(v *viper.Viper) error {
	for _, key := range envKeys {
		env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// secondsToDurationHook reads bare numbers as seconds, so "interval": 60
// means a minute rather than 60ns.
func secondsToDurationHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch n := data.(type) {
	case int:
		return time.Duration(n) * time.Second, nil
	case int64:
		return time.Duration(n) * time.Second, nil
	case float64:
		return time.Duration(n * float64(time.Second)), nil
	}
	return data, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Path) == "" {
		problems = append(problems, "path is required")
	}
	if strings.TrimSpace(c.DB.DSN) == "" && strings.TrimSpace(c.DB.Type) == "" {
		problems = append(problems, "db.type or db.dsn is required")
	}
	if strings.TrimSpace(c.SQL.Insert) == "" {
		problems = append(problems, "sql.inster_sql is required")
	}
	if strings.TrimSpace(c.SQL.Delete) == "" {
		problems = append(problems, "sql.delete_sql is required")
	}
	if c.Poll.Interval <= 0 {
		problems = append(problems, "poll.interval must be positive")
	}
	if c.Poll.Timeout <= 0 {
		problems = append(problems, "poll.timeout must be positive")
	}
	if c.Parse.Delimiter == "" {
		problems = append(problems, "parse.delimiter must not be empty")
	}
	if _, err := feed.ParseNumericPolicy(c.Parse.OnNumericError); err != nil {
		problems = append(problems, "parse.on_numeric_error: "+err.Error())
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, "log.level: "+err.Error())
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		problems = append(problems, "log.format must be text or json")
	}
	if len(problems) > 0 {
		return errors.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
