// Package config loads stealmon settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/joho/godotenv"

	"github.com/ja7ad/stealmon/pkg/system/proc"
)

// ErrInvalid wraps every malformed setting.
var ErrInvalid = errors.New("config: invalid value")

// EnvFileKey names the variable pointing at an optional dotenv file.
const EnvFileKey = "STEALMON_ENV_FILE"

const (
	DefaultInterval   = 5 * time.Second
	DefaultLogDir     = "/var/log/stealmon"
	DefaultBasename   = "stealmon"
	DefaultMaxLogSize = 10 * datasize.MB
	DefaultRetention  = 5
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

type Config struct {
	Interval   time.Duration
	LogDir     string
	Basename   string
	MaxLogSize datasize.ByteSize
	Retention  int
	CPUs       proc.Selection

	// diagnostic stream, not the sample log
	LogLevel  string
	LogFormat string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Interval:   DefaultInterval,
		LogDir:     DefaultLogDir,
		Basename:   DefaultBasename,
		MaxLogSize: DefaultMaxLogSize,
		Retention:  DefaultRetention,
		CPUs:       proc.All(),
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
	}
}

// LogPath is the active sample log, <LogDir>/<Basename>.log.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogDir, c.Basename+".log")
}

// Load reads the optional dotenv file named by STEALMON_ENV_FILE (".env"
// by default), then the process environment. Variables already set in the
// environment win over the file. Unset variables keep their defaults;
// malformed ones are an error wrapping ErrInvalid.
func Load() (*Config, error) {
	envFile := getString(EnvFileKey, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	cfg := Default()

	secs, err := getInt("INTERVAL_SECONDS", int(DefaultInterval/time.Second))
	if err != nil {
		return nil, err
	}
	if secs <= 0 {
		return nil, fmt.Errorf("%w: INTERVAL_SECONDS must be > 0, got %d", ErrInvalid, secs)
	}
	cfg.Interval = time.Duration(secs) * time.Second

	cfg.LogDir = getString("LOG_DIR", cfg.LogDir)
	if cfg.LogDir == "" {
		return nil, fmt.Errorf("%w: LOG_DIR is empty", ErrInvalid)
	}
	cfg.Basename = getString("LOG_FILE_BASENAME", cfg.Basename)
	if cfg.Basename == "" || strings.ContainsRune(cfg.Basename, os.PathSeparator) {
		return nil, fmt.Errorf("%w: LOG_FILE_BASENAME %q", ErrInvalid, cfg.Basename)
	}

	if raw, ok := os.LookupEnv("MAX_LOG_SIZE_BYTES"); ok {
		size, err := datasize.ParseString(strings.TrimSpace(raw))
		if err != nil || size == 0 {
			return nil, fmt.Errorf("%w: MAX_LOG_SIZE_BYTES %q", ErrInvalid, raw)
		}
		cfg.MaxLogSize = size
	}

	if cfg.Retention, err = getInt("RETENTION_FILES", cfg.Retention); err != nil {
		return nil, err
	}
	if cfg.Retention < 0 {
		return nil, fmt.Errorf("%w: RETENTION_FILES must be >= 0, got %d", ErrInvalid, cfg.Retention)
	}

	if raw, ok := os.LookupEnv("CPU_MODE"); ok {
		sel, err := proc.ParseSelection(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: CPU_MODE: %v", ErrInvalid, err)
		}
		cfg.CPUs = sel
	}

	cfg.LogLevel = strings.ToLower(getString("LOG_LEVEL", cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("%w: LOG_LEVEL %q", ErrInvalid, cfg.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(getString("LOG_FORMAT", cfg.LogFormat))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("%w: LOG_FORMAT %q", ErrInvalid, cfg.LogFormat)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalid, key, v)
	}
	return i, nil
}
