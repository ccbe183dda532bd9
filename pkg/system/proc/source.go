package proc

// Counters are the cumulative jiffie counters of one /proc/stat row.
type Counters struct {
	Total uint64 // sum of all time counters on the row
	Steal uint64 // time spent waiting for the hypervisor
}

// Snapshot maps a CPU key (Aggregate or a cpu id) to its counters at one
// instant. Treat it as read-only once returned.
type Snapshot map[int]Counters

// CounterSource returns the cumulative counters of the selected rows.
//
// Rows that do not exist are omitted rather than reported as an error, so
// callers must cope with a partial or empty Snapshot. An unreadable source
// returns an error wrapping ErrUnavailable.
type CounterSource interface {
	Snapshot(sel Selection) (Snapshot, error)
}
