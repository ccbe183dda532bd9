package util

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
)

// ErrBadList is returned by ParseCPUList for malformed input.
var ErrBadList = errors.New("util: malformed cpu list")

// Round2 rounds x to two decimal places the same way "%.2f" renders it,
// so a value that is recorded and a value that is printed never disagree.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return v
}

// Mean is the unweighted arithmetic mean; empty input yields 0.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// ParseCPUList parses a comma separated list of CPU ids. Each element is
// either a single id ("3") or an inclusive kernel-style range ("0-3").
// Order of first appearance is kept and duplicates are rejected.
func ParseCPUList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadList)
	}

	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty element in %q", ErrBadList, s)
		}

		lo, hi := part, part
		if i := strings.IndexByte(part, '-'); i > 0 {
			lo, hi = part[:i], part[i+1:]
		}
		a, err := parseID(lo)
		if err != nil {
			return nil, err
		}
		b, err := parseID(hi)
		if err != nil {
			return nil, err
		}
		if b < a {
			return nil, fmt.Errorf("%w: descending range %q", ErrBadList, part)
		}
		for id := a; id <= b; id++ {
			if slices.Contains(out, id) {
				return nil, fmt.Errorf("%w: duplicate cpu %d", ErrBadList, id)
			}
			out = append(out, id)
		}
	}
	return out, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: bad cpu id %q", ErrBadList, s)
	}
	return id, nil
}

// SystemSummary returns host name, kernel release and logical CPU count
// for the startup banner. Unknown values are reported as "unknown".
func SystemSummary() (host, kernel string, cpus int) {
	host, kernel = "unknown", "unknown"
	if h, err := os.Hostname(); err == nil && h != "" {
		host = h
	}
	if b, err := os.ReadFile("/proc/sys/kernel/osrelease"); err == nil {
		if k := strings.TrimSpace(string(b)); k != "" {
			kernel = k
		}
	}
	return host, kernel, runtime.NumCPU()
}
