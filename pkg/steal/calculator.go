// Package steal derives CPU steal percentages from counter snapshots and
// keeps the running statistics that go with them.
package steal

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/ja7ad/stealmon/pkg/system/proc"
	"github.com/ja7ad/stealmon/pkg/system/util"
)

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Calculator turns two counter snapshots taken an interval apart into a
// steal percentage.
type Calculator struct {
	src   proc.CounterSource
	sleep SleepFunc
	log   *slog.Logger
}

// NewCalculator returns a Calculator reading src. A nil sleep uses Sleep,
// a nil log uses slog.Default().
func NewCalculator(src proc.CounterSource, sleep SleepFunc, log *slog.Logger) *Calculator {
	if sleep == nil {
		sleep = Sleep
	}
	if log == nil {
		log = slog.Default()
	}
	return &Calculator{src: src, sleep: sleep, log: log}
}

// Compute takes a snapshot, waits interval, takes a second snapshot and
// returns Percent of the pair.
//
// A failed read never fails the sample: it degrades to 0.00 with a
// warning. The only error is the context's, when shutdown interrupts the
// wait; the sample is then abandoned.
func (c *Calculator) Compute(ctx context.Context, sel proc.Selection, interval time.Duration) (float64, error) {
	s1, err1 := c.src.Snapshot(sel)
	if err1 != nil {
		c.log.Warn("first counter read failed", "cpus", sel.String(), "err", err1)
	}

	if err := c.sleep(ctx, interval); err != nil {
		return 0, err
	}

	s2, err2 := c.src.Snapshot(sel)
	if err2 != nil {
		c.log.Warn("second counter read failed", "cpus", sel.String(), "err", err2)
	}

	pct, n := Percent(s1, s2)
	if n == 0 {
		c.log.Info("no cpu contributed to sample, recording 0.00",
			"cpus", sel.String(), "rows_before", len(s1), "rows_after", len(s2))
	}
	return pct, nil
}

// Percent computes the steal percentage between two snapshots of the same
// selection and the number of CPUs that contributed to it.
//
// Only keys present in both snapshots are considered. A CPU whose total
// did not advance (dt <= 0) is skipped. Each remaining CPU contributes
// round2(100*ds/dt) and the result is their unweighted mean, rounded to
// two decimals. With no contributors the result is 0.
//
// A steal counter that went backwards yields a negative percentage; it is
// not clamped.
func Percent(s1, s2 proc.Snapshot) (float64, int) {
	var pcts []float64
	for _, key := range slices.Sorted(maps.Keys(s2)) {
		b := s2[key]
		a, ok := s1[key]
		if !ok {
			continue
		}
		dt := int64(b.Total) - int64(a.Total)
		if dt <= 0 {
			continue
		}
		ds := int64(b.Steal) - int64(a.Steal)
		pcts = append(pcts, util.Round2(100*float64(ds)/float64(dt)))
	}
	if len(pcts) == 0 {
		return 0, 0
	}
	return util.Round2(util.Mean(pcts)), len(pcts)
}
