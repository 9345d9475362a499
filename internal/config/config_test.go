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

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults fill missing keys", func(t *testing.T) {
		// Given: a config file that only sets the log level
		path := writeConfig(t, "log-level: debug\n")

		// When: the config is loaded
		conf, err := Load(path)

		// Then: every other field has its default
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "8080", conf.SocketPort)
		assert.Equal(t, 24*time.Hour, conf.SessionTTL)
		assert.Equal(t, 500*time.Millisecond, conf.EndGameDelay)
		assert.Equal(t, Board{Width: 7, Height: 6}, conf.Board)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("File values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
socket-port: "7000"
end-game-delay: 1s
board:
  width: 9
  height: 8
redis:
  host: redis
  port: "6380"
allowed-origins:
  - http://localhost:5173
`)

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "7000", conf.SocketPort)
		assert.Equal(t, time.Second, conf.EndGameDelay)
		assert.Equal(t, Board{Width: 9, Height: 8}, conf.Board)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, []string{"http://localhost:5173"}, conf.AllowedOrigins)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.Error(t, err)
	})
}
