package steal

import (
	"fmt"

	"github.com/ja7ad/stealmon/pkg/system/util"
)

// Stats keeps running steal statistics for the lifetime of one process.
//
// It is never persisted: a restart starts again from zero. The owner
// (normally the monitor loop) creates it with NewStats and is the only
// caller of Record.
type Stats struct {
	count int
	sum   float64
	peak  float64
}

// Summary is the state of Stats after a Record call.
type Summary struct {
	Avg   float64
	Peak  float64
	Count int
}

func (s Summary) String() string {
	return fmt.Sprintf("avg=%.2f peak=%.2f samples=%d", s.Avg, s.Peak, s.Count)
}

// NewStats returns empty statistics: count 0, sum 0, peak 0.
func NewStats() *Stats { return &Stats{} }

// Record adds one sample. Every call counts, including degraded 0.00
// samples.
//
// The peak starts at 0, not at -Inf, so while only negative samples have
// been seen the reported peak stays 0.00.
func (s *Stats) Record(pct float64) Summary {
	s.count++
	s.sum += pct
	s.peak = util.Round2(max(s.peak, pct))
	return s.Summary()
}

// Summary returns the current state without recording anything.
func (s *Stats) Summary() Summary {
	if s.count == 0 {
		return Summary{}
	}
	return Summary{
		Avg:   util.Round2(s.sum / float64(s.count)),
		Peak:  s.peak,
		Count: s.count,
	}
}
