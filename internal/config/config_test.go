package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowAll)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/scores")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.HTTPPort)
	assert.Equal(t, "postgres://u:p@db:5432/scores", cfg.DB.DSN())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := "DB_DRIVER=sqlite\nDB_NAME=scores.db\nCORS_ALLOW_ALL=true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "scores.db", cfg.DB.DSN())
	assert.True(t, cfg.CORS.AllowAll)
}

func TestLoadConfig_ProductionFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("APP_ENV=production\n"), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := DatabaseConfig{Driver: DriverPostgres, Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable", pg.DSN())

	my := DatabaseConfig{Driver: DriverMySQL, Host: "h", Port: "3306", User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "u:p@tcp(h:3306)/n?charset=utf8mb4&parseTime=True&loc=Local", my.DSN())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DB:   DatabaseConfig{Driver: DriverPostgres, Host: "localhost", MaxOpenConns: 10, MaxIdleConns: 5},
			App:  AppConfig{HTTPPort: "8080", ShutdownTimeoutSeconds: 5},
			CORS: CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.DB.Driver = "oracle" }, "unsupported DB_DRIVER"},
		{"missing port", func(c *Config) { c.App.HTTPPort = "" }, "HTTP_PORT is required"},
		{"rate limit without redis", func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, RequestsPerSecond: 1, BurstCapacity: 1}
		}, "requires REDIS_ENABLED"},
		{"no cors origins", func(c *Config) { c.CORS.AllowedOrigins = nil }, "CORS_ALLOWED_ORIGINS"},
		{"allow all without origins", func(c *Config) {
			c.CORS = CORSConfig{AllowAll: true}
		}, ""},
		{"idle exceeds open", func(c *Config) { c.DB.MaxIdleConns = 20 }, "DB_MAX_IDLE_CONNS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
