// Package monitor runs the sampling loop: rotate-check, sample, record,
// append, once per interval until shut down.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/ja7ad/stealmon/pkg/config"
	"github.com/ja7ad/stealmon/pkg/logfile"
	"github.com/ja7ad/stealmon/pkg/steal"
	"github.com/ja7ad/stealmon/pkg/system/proc"
)

// ErrStartup marks a failed startup precondition; the process should exit
// non-zero.
var ErrStartup = errors.New("monitor: startup precondition failed")

// State of the loop. There are only two.
type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithClock sets the time source used to stamp log lines.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithSleep replaces the interval wait inside each sample.
func WithSleep(sleep steal.SleepFunc) Option {
	return func(m *Monitor) { m.sleep = sleep }
}

// Monitor owns everything one stealmon process mutates: the running
// statistics and the log file family. Statistics start from zero for
// every Monitor and are never persisted.
type Monitor struct {
	cfg   *config.Config
	src   proc.CounterSource
	fs    afero.Fs
	log   *slog.Logger
	now   func() time.Time
	sleep steal.SleepFunc
	state State

	calc   *steal.Calculator
	stats  *steal.Stats
	rot    *logfile.Rotator
	writer *logfile.Writer
}

// New wires a Monitor. fs is where the log family lives, normally
// afero.NewOsFs().
func New(cfg *config.Config, src proc.CounterSource, fs afero.Fs, log *slog.Logger, opts ...Option) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	m := &Monitor{
		cfg:   cfg,
		src:   src,
		fs:    fs,
		log:   log,
		now:   time.Now,
		sleep: steal.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.calc = steal.NewCalculator(src, m.sleep, log)
	m.stats = steal.NewStats()
	m.rot = logfile.NewRotator(fs, log)
	m.writer = logfile.NewWriter(fs, cfg.LogPath())
	return m
}

// Prepare checks the startup preconditions: the counter source is
// readable and the log directory can be created and written. Any failure
// wraps ErrStartup.
func (m *Monitor) Prepare() error {
	snap, err := m.src.Snapshot(m.cfg.CPUs)
	if err != nil {
		return fmt.Errorf("%w: counter source: %w", ErrStartup, err)
	}
	if len(snap) == 0 {
		m.log.Warn("no counter rows for selected cpus, samples will read 0.00", "cpus", m.cfg.CPUs.String())
	}

	if err := m.fs.MkdirAll(m.cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("%w: create log dir %s: %w", ErrStartup, m.cfg.LogDir, err)
	}
	if err := m.writer.EnsureHeader(); err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	return nil
}

// Step runs one iteration in its fixed order: rotate-check, sample (which
// waits one interval), record, append. It returns the appended entry, or
// the context error if shutdown interrupted the sample, in which case
// nothing is recorded or written.
func (m *Monitor) Step(ctx context.Context) (logfile.Entry, error) {
	m.rot.MaybeRotate(m.writer.Path(), m.cfg.MaxLogSize, m.cfg.Retention)

	pct, err := m.calc.Compute(ctx, m.cfg.CPUs, m.cfg.Interval)
	if err != nil {
		return logfile.Entry{}, err
	}

	sum := m.stats.Record(pct)
	e := logfile.Entry{
		Time:    m.now(),
		Steal:   pct,
		Avg:     sum.Avg,
		Peak:    sum.Peak,
		Samples: sum.Count,
	}
	if err := m.writer.Append(e); err != nil {
		m.log.Warn("append sample failed", "path", m.writer.Path(), "err", err)
	}
	m.log.Debug("sample", "steal_pct", pct, "summary", sum.String())
	return e, nil
}

// Run loops Step until ctx is cancelled. Cancellation is honoured at
// iteration boundaries and during the interval wait, so shutdown takes at
// most one interval. It returns nil on shutdown.
func (m *Monitor) Run(ctx context.Context) error {
	m.state = Running
	m.log.Info("sampling started",
		"cpus", m.cfg.CPUs.String(),
		"interval", m.cfg.Interval,
		"log", m.writer.Path(),
		"max_size", m.cfg.MaxLogSize.HumanReadable(),
		"retention", m.cfg.Retention,
	)

	for ctx.Err() == nil {
		if _, err := m.Step(ctx); err != nil {
			break
		}
	}

	m.state = Terminated
	sum := m.stats.Summary()
	m.log.Info("sampling stopped", "samples", sum.Count, "avg", sum.Avg, "peak", sum.Peak)
	return nil
}

// State reports whether Run is still looping.
func (m *Monitor) State() State { return m.state }

// Summary returns the running statistics so far.
func (m *Monitor) Summary() steal.Summary { return m.stats.Summary() }
