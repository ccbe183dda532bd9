package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"INTERVAL_SECONDS", "LOG_DIR", "LOG_FILE_BASENAME", "MAX_LOG_SIZE_BYTES",
	"RETENTION_FILES", "CPU_MODE", "LOG_LEVEL", "LOG_FORMAT",
}

// cleanEnv unsets every setting for the duration of the test and points
// the dotenv lookup at a file that does not exist. The t.Setenv cleanups
// also undo whatever godotenv exports during the test.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv(EnvFileKey, filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, "/var/log/stealmon", cfg.LogDir)
	assert.Equal(t, "stealmon", cfg.Basename)
	assert.Equal(t, uint64(10485760), cfg.MaxLogSize.Bytes())
	assert.Equal(t, 5, cfg.Retention)
	assert.True(t, cfg.CPUs.IsAll())
	assert.Equal(t, "/var/log/stealmon/stealmon.log", cfg.LogPath())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("INTERVAL_SECONDS", "2")
	t.Setenv("LOG_DIR", "/tmp/steal")
	t.Setenv("LOG_FILE_BASENAME", "vm42")
	t.Setenv("MAX_LOG_SIZE_BYTES", "4096")
	t.Setenv("RETENTION_FILES", "0")
	t.Setenv("CPU_MODE", "0,2")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "/tmp/steal/vm42.log", cfg.LogPath())
	assert.Equal(t, 4*datasize.KB, cfg.MaxLogSize)
	assert.Equal(t, 0, cfg.Retention)
	assert.Equal(t, []int{0, 2}, cfg.CPUs.IDs())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_HumanSize(t *testing.T) {
	cleanEnv(t)
	t.Setenv("MAX_LOG_SIZE_BYTES", "2MB")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*datasize.MB, cfg.MaxLogSize)
}

func TestLoad_EnvFile(t *testing.T) {
	cleanEnv(t)
	p := filepath.Join(t.TempDir(), "stealmon.env")
	require.NoError(t, os.WriteFile(p, []byte("INTERVAL_SECONDS=9\nCPU_MODE=1-2\nRETENTION_FILES=3\n"), 0o644))
	t.Setenv(EnvFileKey, p)
	t.Setenv("RETENTION_FILES", "7") // environment wins over the file

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9*time.Second, cfg.Interval)
	assert.Equal(t, []int{1, 2}, cfg.CPUs.IDs())
	assert.Equal(t, 7, cfg.Retention)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"INTERVAL_SECONDS":   "0",
		"LOG_FILE_BASENAME":  "a/b",
		"MAX_LOG_SIZE_BYTES": "lots",
		"RETENTION_FILES":    "-1",
		"CPU_MODE":           "0,0",
		"LOG_LEVEL":          "chatty",
		"LOG_FORMAT":         "xml",
		"LOG_DIR":            "",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(key, val)
			_, err := Load()
			require.ErrorIs(t, err, ErrInvalid)
		})
	}

	t.Run("interval_not_a_number", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("INTERVAL_SECONDS", "5s")
		_, err := Load()
		require.ErrorIs(t, err, ErrInvalid)
	})
	t.Run("zero_size", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("MAX_LOG_SIZE_BYTES", "0")
		_, err := Load()
		require.ErrorIs(t, err, ErrInvalid)
	})
}
