package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/auth"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config dir and working directory at empty temp
// dirs so no stray passkeeper.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Chdir(t.TempDir())
	return home
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load(nil)
	require.NoError(t, err)

	dataDir := DefaultDataDir()
	want := &Config{
		DataDir: dataDir,
		DB:      DBConfig{Driver: "sqlite", DSN: filepath.Join(dataDir, "vault.db")},
		Key: KeyConfig{
			Store: "file",
			File:  filepath.Join(dataDir, "vault.key"),
			S3:    S3Config{Object: "passkeeper/vault.key", Region: "us-east-1"},
		},
		Cipher: "aes-256-gcm",
		Auth: AuthConfig{
			LockoutThreshold: 2,
			DeclineCounter:   1,
			OTPTTL:           10 * time.Minute,
			SessionTTL:       30 * time.Minute,
		},
		Notify: NotifyConfig{Transport: "log", SMTP: SMTPConfig{Port: 587}},
		Log:    LogConfig{Level: "warn"},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileEnvFlagPrecedence(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /from/file
cipher: xchacha20-poly1305
log:
  level: info
auth:
  lockout_threshold: 5
  otp_ttl: 2m
notify:
  transport: smtp
  smtp:
    host: smtp.example.com
    from: vault@example.com
`), 0o600))

	t.Setenv("PASSKEEPER_LOG_LEVEL", "error")
	t.Setenv("PASSKEEPER_AUTH_DECLINE_COUNTER", "3")

	c, err := Load(newFlags(t, "--config", path, "--data-dir", dir))
	require.NoError(t, err)

	assert.Equal(t, dir, c.DataDir, "flag beats file")
	assert.Equal(t, "error", c.Log.Level, "env beats file")
	assert.Equal(t, "xchacha20-poly1305", c.Cipher)
	assert.Equal(t, 5, c.Auth.LockoutThreshold)
	assert.Equal(t, 3, c.Auth.DeclineCounter)
	assert.Equal(t, 2*time.Minute, c.Auth.OTPTTL)
	assert.Equal(t, "smtp.example.com", c.Notify.SMTP.Host)
	assert.Equal(t, filepath.Join(dir, "vault.db"), c.DB.DSN)
	assert.Equal(t, filepath.Join(dir, "vault.key"), c.Key.File)
}

func TestLoad_ConfigInWorkingDir(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("passkeeper.yaml", []byte("log:\n  level: debug\n"), 0o600))

	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	isolate(t)
	t.Setenv("PASSKEEPER_DB_DRIVER", "postgres")
	t.Setenv("PASSKEEPER_DB_DSN", "postgres://localhost/vault")

	c, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "postgres://localhost/vault", c.DB.DSN)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DataDir: "/tmp/x",
			DB:      DBConfig{Driver: "sqlite", DSN: "/tmp/x/vault.db"},
			Key:     KeyConfig{Store: "file", File: "/tmp/x/vault.key"},
			Cipher:  "aes-256-gcm",
			Auth:    AuthConfig{LockoutThreshold: 2, DeclineCounter: 1, OTPTTL: time.Minute, SessionTTL: time.Minute},
			Notify:  NotifyConfig{Transport: "log"},
			Log:     LogConfig{Level: "info"},
		}
	}
	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"driver", func(c *Config) { c.DB.Driver = "mysql" }, `db.driver "mysql"`},
		{"postgres dsn", func(c *Config) { c.DB.Driver = "postgres"; c.DB.DSN = "" }, "db.dsn is required"},
		{"key store", func(c *Config) { c.Key.Store = "vault" }, `key.store "vault"`},
		{"s3 bucket", func(c *Config) { c.Key.Store = "s3" }, "key.s3.bucket"},
		{"cipher", func(c *Config) { c.Cipher = "rot13" }, "unknown cipher"},
		{"auth", func(c *Config) { c.Auth.DeclineCounter = 2 }, "decline counter"},
		{"transport", func(c *Config) { c.Notify.Transport = "pigeon" }, `notify.transport "pigeon"`},
		{"smtp host", func(c *Config) { c.Notify.Transport = "smtp" }, "notify.smtp.host"},
		{"log level", func(c *Config) { c.Log.Level = "chatty" }, "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAuthConfig_Gate(t *testing.T) {
	ac := AuthConfig{LockoutThreshold: 3, DeclineCounter: 2, OTPTTL: time.Minute, SessionTTL: time.Hour}
	assert.Equal(t, auth.Config{LockoutThreshold: 3, DeclineCounter: 2, OTPTTL: time.Minute, SessionTTL: time.Hour}, ac.Gate())
}
