//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/ja7ad/stealmon/pkg/config"
	"github.com/ja7ad/stealmon/pkg/monitor"
	"github.com/ja7ad/stealmon/pkg/system/proc"
	"github.com/ja7ad/stealmon/pkg/system/util"
)

func main() {
	root := &cobra.Command{
		Use:   "stealmon",
		Short: "CPU steal time sampler with a rotated append-only log",
		Long: `stealmon samples CPU steal time (time a virtual CPU was ready to run but
the hypervisor ran something else) from /proc/stat, and appends one line per
sample to a size-rotated log file together with the running average, peak
and sample count since start.

All settings come from the environment (optionally seeded from the dotenv
file named by STEALMON_ENV_FILE, default ./.env):

  INTERVAL_SECONDS    seconds between samples            (default 5)
  LOG_DIR             directory of the log family        (default /var/log/stealmon)
  LOG_FILE_BASENAME   active file is <basename>.log      (default stealmon)
  MAX_LOG_SIZE_BYTES  rotate at this size, e.g. 10MB     (default 10485760)
  RETENTION_FILES     rotated files kept, 0 = truncate   (default 5)
  CPU_MODE            "all" or cpu ids, e.g. 0,2 or 0-3  (default all)
  LOG_LEVEL           debug|info|warn|error              (default info)
  LOG_FORMAT          text|json diagnostics on stderr    (default text)

Log line format:
  <iso8601 time> | <steal_pct> | <run_avg> | <run_peak> | <samples>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	slog.SetDefault(log)

	host, kernel, cpus := util.SystemSummary()
	log.Info("stealmon starting", "host", host, "kernel", kernel, "cpus", cpus, "pid", os.Getpid())

	fs := afero.NewOsFs()
	if err := fs.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("%w: create log dir %s: %w", monitor.ErrStartup, cfg.LogDir, err)
	}
	if err := unix.Access(cfg.LogDir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%w: log dir %s not writable: %w", monitor.ErrStartup, cfg.LogDir, err)
	}

	m := monitor.New(cfg, proc.NewStatSource(proc.DefaultStatPath), fs, log)
	if err := m.Prepare(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return m.Run(ctx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
