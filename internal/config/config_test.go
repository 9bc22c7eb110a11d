package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"DATABASE_URL", "SERVER_ADDR", "LOG_LEVEL", "LOG_FORMAT",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
	"REMINDER_SCHEDULE", "NOTIFIER",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://library@localhost/library")

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 20, cfg.DBMaxOpenConns)
	assert.Equal(t, 10, cfg.DBMaxIdleConns)
	assert.Equal(t, time.Hour, cfg.DBConnMaxLifetime)
	assert.Equal(t, "0 9 * * *", cfg.ReminderSchedule)
	assert.Equal(t, NotifierOutbox, cfg.Notifier)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDR", ":9090")

	_, err := Load(missingFile(t))
	assert.Error(t, err)
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDR", ":7070")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"DATABASE_URL=postgres://file@localhost/library\n"+
			"SERVER_ADDR=:6060\n"+
			"NOTIFIER=log\n"+
			"DB_CONN_MAX_LIFETIME=30m\n",
	), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file@localhost/library", cfg.DatabaseURL)
	assert.Equal(t, ":7070", cfg.ServerAddr, "environment wins over the file")
	assert.Equal(t, NotifierLog, cfg.Notifier)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
}

func TestLoadValidates(t *testing.T) {
	tests := map[string]string{
		"NOTIFIER":          "pigeon",
		"LOG_FORMAT":        "xml",
		"DB_MAX_OPEN_CONNS": "0",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://library@localhost/library")
			t.Setenv(key, value)

			_, err := Load(missingFile(t))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(&Config{LogLevel: "debug", LogFormat: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	_, err = NewLogger(&Config{LogLevel: "loud", LogFormat: "text"})
	assert.Error(t, err)
}
