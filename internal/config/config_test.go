package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PLATFORM_BASE_URL", "https://platform.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, DriverPlatform, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Presence.HeartbeatInterval)
	assert.Equal(t, 3*time.Second, cfg.Presence.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Presence.ActiveWindow)
	assert.Equal(t, 2*time.Minute, cfg.Presence.IdleWindow)
	assert.False(t, cfg.SelfHosted())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
store:
  driver: sqlite
database:
  path: ":memory:"
storage:
  driver: s3
s3:
  bucket: installers
  region: us-east-1
jwt:
  secret: test-secret
presence:
  heartbeat_interval: 10s
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("PRESENCE_POLL_INTERVAL", "1s")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.GetDSN())
	assert.Equal(t, 10*time.Second, cfg.Presence.HeartbeatInterval)
	assert.Equal(t, time.Second, cfg.Presence.PollInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.SelfHosted())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "platform driver without base url",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name: "unknown store driver",
			mutate: func(c *Config) {
				c.Platform.BaseURL = "https://platform.example.com"
				c.Store.Driver = "mongo"
			},
			wantErr: true,
		},
		{
			name: "idle window not above active window",
			mutate: func(c *Config) {
				c.Platform.BaseURL = "https://platform.example.com"
				c.Presence.IdleWindow = c.Presence.ActiveWindow
			},
			wantErr: true,
		},
		{
			name: "self hosted without jwt secret",
			mutate: func(c *Config) {
				c.Store.Driver = DriverPostgres
				c.Storage.Driver = DriverS3
				c.S3.Bucket = "b"
				c.S3.Region = "r"
			},
			wantErr: true,
		},
		{
			name: "redis presence backend",
			mutate: func(c *Config) {
				c.Platform.BaseURL = "https://platform.example.com"
				c.Presence.Backend = DriverRedis
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     5432,
		User:     "u",
		Password: "p",
		Name:     "n",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.GetDSN())

	d.URL = "postgres://u:p@db/n"
	assert.Equal(t, "postgres://u:p@db/n", d.GetDSN())
}
