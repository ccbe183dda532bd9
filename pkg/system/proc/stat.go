package proc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultStatPath is the kernel's aggregate counter file.
const DefaultStatPath = "/proc/stat"

// Positions on a /proc/stat cpu row, counting the label as field 0:
//
//	cpu0 user nice system idle iowait irq softirq steal guest guest_nice
const (
	stealField   = 8
	firstCounter = 1
	lastCounter  = 10
)

// StatSource reads counters from a /proc/stat formatted file.
type StatSource struct {
	path string
}

// NewStatSource returns a source reading path; an empty path means
// DefaultStatPath. Tests point it at fixture files.
func NewStatSource(path string) *StatSource {
	if path == "" {
		path = DefaultStatPath
	}
	return &StatSource{path: path}
}

// Path returns the file the source reads.
func (s *StatSource) Path() string { return s.path }

// Snapshot parses every "cpu" row and keeps the ones sel asks for.
func (s *StatSource) Snapshot(sel Selection) (Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	snap := make(Snapshot)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fs := strings.Fields(sc.Text())
		if len(fs) == 0 || !strings.HasPrefix(fs[0], "cpu") {
			continue
		}
		key, ok := rowKey(fs[0])
		if !ok || !sel.has(key) {
			continue
		}
		c, ok := ParseCounters(fs)
		if !ok {
			continue
		}
		snap[key] = c
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return snap, nil
}

// rowKey maps "cpu" to Aggregate and "cpuN" to N.
func rowKey(label string) (int, bool) {
	if label == "cpu" {
		return Aggregate, true
	}
	id, err := strconv.Atoi(strings.TrimPrefix(label, "cpu"))
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// ParseCounters extracts Total and Steal from the whitespace-split fields
// of one cpu row, label included. Rows too short to carry a steal counter
// (pre-2.6.11 kernels) or with non-numeric counters are rejected.
//
// Total sums fields 1..10 when present, so guest time (already included
// in user time by the kernel) is counted the same way the row exposes it.
func ParseCounters(fields []string) (Counters, bool) {
	if len(fields) <= stealField {
		return Counters{}, false
	}
	var c Counters
	for i := firstCounter; i <= lastCounter && i < len(fields); i++ {
		v, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return Counters{}, false
		}
		c.Total += v
		if i == stealField {
			c.Steal = v
		}
	}
	return c, true
}
