// Package config loads passkeeper settings.
//
// Sources, lowest to highest precedence:
//
//  1. built-in defaults
//  2. a YAML file: --config, else passkeeper.yaml in the user config
//     directory or the working directory
//  3. environment variables prefixed PASSKEEPER_ (dots become underscores,
//     e.g. PASSKEEPER_DB_DRIVER)
//  4. command-line flags registered by RegisterFlags
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/auth"
	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyStoreFile = "file"
	KeyStoreS3   = "s3"

	TransportLog  = "log"
	TransportSMTP = "smtp"

	envPrefix = "passkeeper"
)

type Config struct {
	DataDir string       `mapstructure:"data_dir"`
	DB      DBConfig     `mapstructure:"db"`
	Key     KeyConfig    `mapstructure:"key"`
	Cipher  string       `mapstructure:"cipher"`
	Auth    AuthConfig   `mapstructure:"auth"`
	Notify  NotifyConfig `mapstructure:"notify"`
	Log     LogConfig    `mapstructure:"log"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type KeyConfig struct {
	Store string   `mapstructure:"store"`
	File  string   `mapstructure:"file"`
	S3    S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Object    string `mapstructure:"object"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type AuthConfig struct {
	LockoutThreshold int           `mapstructure:"lockout_threshold"`
	DeclineCounter   int           `mapstructure:"decline_counter"`
	OTPTTL           time.Duration `mapstructure:"otp_ttl"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
}

type NotifyConfig struct {
	Transport string     `mapstructure:"transport"`
	SMTP      SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Gate converts the auth section for auth.NewGate.
func (c AuthConfig) Gate() auth.Config {
	return auth.Config{
		LockoutThreshold: c.LockoutThreshold,
		DeclineCounter:   c.DeclineCounter,
		OTPTTL:           c.OTPTTL,
		SessionTTL:       c.SessionTTL,
	}
}

// DefaultDataDir is <user config dir>/passkeeper, or .passkeeper when the
// user config dir is unknown.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".passkeeper"
	}
	return filepath.Join(dir, "passkeeper")
}

// Defaults returns every known key with its default. Keys missing here are
// invisible to environment lookup.
func Defaults() map[string]any {
	ac := auth.DefaultConfig()
	return map[string]any{
		"data_dir":               DefaultDataDir(),
		"db.driver":              dbx.DriverSQLite,
		"db.dsn":                 "",
		"key.store":              KeyStoreFile,
		"key.file":               "",
		"key.s3.bucket":          "",
		"key.s3.object":          "passkeeper/vault.key",
		"key.s3.region":          "us-east-1",
		"key.s3.endpoint":        "",
		"key.s3.access_key":      "",
		"key.s3.secret_key":      "",
		"cipher":                 cryptox.AES256GCM.String(),
		"auth.lockout_threshold": ac.LockoutThreshold,
		"auth.decline_counter":   ac.DeclineCounter,
		"auth.otp_ttl":           ac.OTPTTL,
		"auth.session_ttl":       ac.SessionTTL,
		"notify.transport":       TransportLog,
		"notify.smtp.host":       "",
		"notify.smtp.port":       587,
		"notify.smtp.username":   "",
		"notify.smtp.password":   "",
		"notify.smtp.from":       "",
		"log.level":              "warn",
	}
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"data-dir":  "data_dir",
	"db-driver": "db.driver",
	"db-dsn":    "db.dsn",
	"key-store": "key.store",
	"key-file":  "key.file",
	"cipher":    "cipher",
	"log-level": "log.level",
}

// RegisterFlags adds the overridable settings to fs. Defaults are left empty
// so that only flags the user sets take effect.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("data-dir", "", "directory holding the vault database and key")
	fs.String("db-driver", "", "vault database driver (sqlite|postgres)")
	fs.String("db-dsn", "", "vault database DSN (default <data-dir>/vault.db for sqlite)")
	fs.String("key-store", "", "where the encryption key lives (file|s3)")
	fs.String("key-file", "", "key file path (default <data-dir>/vault.key)")
	fs.String("cipher", "", "cipher for new data (aes-256-gcm|xchacha20-poly1305)")
	fs.String("log-level", "", "log level (debug|info|warn|error)")
}

// Load builds the configuration from all sources. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("passkeeper")
	v.SetConfigType("yaml")
	if fs != nil {
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
		}
	}
	v.AddConfigPath(DefaultDataDir())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDerived()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDerived() {
	if c.DB.Driver == dbx.DriverSQLite && c.DB.DSN == "" {
		c.DB.DSN = filepath.Join(c.DataDir, "vault.db")
	}
	if c.Key.File == "" {
		c.Key.File = filepath.Join(c.DataDir, "vault.key")
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case dbx.DriverSQLite:
	case dbx.DriverPostgres:
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("db.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("db.driver %q is not supported", c.DB.Driver))
	}

	switch c.Key.Store {
	case KeyStoreFile:
	case KeyStoreS3:
		if c.Key.S3.Bucket == "" || c.Key.S3.Object == "" {
			errs = append(errs, errors.New("key.s3.bucket and key.s3.object are required for the s3 key store"))
		}
	default:
		errs = append(errs, fmt.Errorf("key.store %q is not supported", c.Key.Store))
	}

	if _, err := cryptox.ParseAlgorithm(c.Cipher); err != nil {
		errs = append(errs, err)
	}
	if err := c.Auth.Gate().Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Notify.Transport {
	case TransportLog:
	case TransportSMTP:
		if c.Notify.SMTP.Host == "" || c.Notify.SMTP.From == "" {
			errs = append(errs, errors.New("notify.smtp.host and notify.smtp.from are required for smtp"))
		}
	default:
		errs = append(errs, fmt.Errorf("notify.transport %q is not supported", c.Notify.Transport))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
