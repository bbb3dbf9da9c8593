package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv xoá các biến có thể rò rỉ từ môi trường của máy chạy test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "PORT", "STORAGE", "DATABASE_URL", "JWT_SECRET", "TOKEN_TTL",
		"BCRYPT_COST", "CORS_ORIGINS", "LOG_LEVEL", "MQTT_URL", "MQTT_TOPIC_PREFIX",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/tasks")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "tasktracker", cfg.MQTTTopicPrefix)
	assert.Equal(t, "http://localhost:5173,http://localhost:3000", cfg.AllowedOrigins())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ReadsDotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	content := "JWT_SECRET=from-file\nSTORAGE=memory\nTOKEN_TTL=30m\nBCRYPT_COST=4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"JWT_SECRET", "STORAGE", "TOKEN_TTL", "BCRYPT_COST"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"STORAGE": "memory"}},
		{name: "postgres without url", env: map[string]string{"JWT_SECRET": "s"}},
		{name: "unknown storage", env: map[string]string{"JWT_SECRET": "s", "STORAGE": "redis"}},
		{name: "unknown env", env: map[string]string{"JWT_SECRET": "s", "STORAGE": "memory", "APP_ENV": "staging"}},
		{name: "bcrypt cost too low", env: map[string]string{"JWT_SECRET": "s", "STORAGE": "memory", "BCRYPT_COST": "2"}},
		{name: "negative ttl", env: map[string]string{"JWT_SECRET": "s", "STORAGE": "memory", "TOKEN_TTL": "-1h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestAllowedOrigins_TrimsBlanks(t *testing.T) {
	c := &Config{CORSOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, "http://a.test,http://b.test", c.AllowedOrigins())
}
