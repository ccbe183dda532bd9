package proc

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ja7ad/stealmon/pkg/system/util"
)

// Aggregate is the Snapshot key of the summed "cpu" row.
const Aggregate = -1

// Selection picks which /proc/stat rows a sample looks at: either the
// aggregate row or an ordered set of distinct per-CPU rows. The zero value
// selects the aggregate.
type Selection struct {
	ids []int
}

// All selects the aggregate row.
func All() Selection { return Selection{} }

// CPUs selects the given per-CPU rows. ids must be non-empty, non-negative
// and distinct.
func CPUs(ids ...int) (Selection, error) {
	if len(ids) == 0 {
		return Selection{}, fmt.Errorf("%w: no cpu ids", ErrBadSelection)
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id < 0 {
			return Selection{}, fmt.Errorf("%w: negative cpu id %d", ErrBadSelection, id)
		}
		if slices.Contains(out, id) {
			return Selection{}, fmt.Errorf("%w: duplicate cpu id %d", ErrBadSelection, id)
		}
		out = append(out, id)
	}
	return Selection{ids: out}, nil
}

// ParseSelection accepts "all" (case-insensitive) or a cpu list such as
// "0,2" or "0-3".
func ParseSelection(s string) (Selection, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return All(), nil
	}
	ids, err := util.ParseCPUList(s)
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %v", ErrBadSelection, err)
	}
	return CPUs(ids...)
}

// IsAll reports whether the aggregate row is selected.
func (s Selection) IsAll() bool { return len(s.ids) == 0 }

// IDs returns a copy of the selected CPU ids, nil for the aggregate.
func (s Selection) IDs() []int { return slices.Clone(s.ids) }

// Keys returns the Snapshot keys this selection produces.
func (s Selection) Keys() []int {
	if s.IsAll() {
		return []int{Aggregate}
	}
	return slices.Clone(s.ids)
}

func (s Selection) String() string {
	if s.IsAll() {
		return "all"
	}
	parts := make([]string, len(s.ids))
	for i, id := range s.ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func (s Selection) has(key int) bool {
	if s.IsAll() {
		return key == Aggregate
	}
	return slices.Contains(s.ids, key)
}
