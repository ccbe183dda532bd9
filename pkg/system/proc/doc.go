// Package proc reads cumulative CPU steal counters from the kernel and
// hands them out as immutable snapshots.
//
// Overview
//
//   - CounterSource interface:
//     Snapshot(sel Selection) (Snapshot, error)
//
//     A Snapshot maps a CPU key to its cumulative (Total, Steal) jiffies.
//     The key is Aggregate (-1) for the summed "cpu" row and the cpu id for
//     "cpuN" rows. Steal percentages are derived by the caller from two
//     snapshots taken an interval apart (see pkg/steal).
//
//   - Implementations:
//
//   - StatSource: parses /proc/stat (or any file in that format).
//
//   - Script: replays a fixed list of snapshots or errors; used by tests
//     to exercise the sampling arithmetic deterministically.
//
//   - Selection:
//     All() selects the aggregate row. CPUs(ids...) selects an ordered,
//     distinct, non-negative set of per-CPU rows. ParseSelection accepts
//     "all", "0,2,5" and kernel-style ranges such as "0-3".
//
//   - Errors (errs.go):
//     ErrUnavailable  : the counter file could not be opened or read
//     ErrBadSelection : empty, negative or duplicate cpu ids
//
// # /proc/stat row layout
//
//	cpu  user nice system idle iowait irq softirq steal guest guest_nice
//	cpu0 user nice system idle iowait irq softirq steal guest guest_nice
//
// Counting the label as field 1, field 9 is steal and fields 2 to 11 are
// summed into Total. Older kernels print fewer columns; rows without a
// steal column are skipped, rows without guest columns are summed over
// what is there.
//
// A requested cpu id without a row (offline CPU, typo in the config) is
// silently absent from the Snapshot. Only an unreadable file is an error.
//
// Example: one steal sample over the aggregate row
//
//	/*
//	src := proc.NewStatSource("")
//	s1, _ := src.Snapshot(proc.All())
//	time.Sleep(5 * time.Second)
//	s2, _ := src.Snapshot(proc.All())
//	a, b := s1[proc.Aggregate], s2[proc.Aggregate]
//	pct := 100 * float64(b.Steal-a.Steal) / float64(b.Total-a.Total)
//	*/
package proc
