package proc

import (
	"fmt"
	"sync"
)

// Step is one scripted answer: a snapshot, or an error when Err is set.
type Step struct {
	Snap Snapshot
	Err  error
}

// Script is a CounterSource that replays a fixed sequence of steps, one per
// Snapshot call. It ignores the selection beyond filtering keys, which lets
// tests drive the sampling arithmetic without a kernel.
type Script struct {
	mu    sync.Mutex
	steps []Step
	calls int
}

// NewScript returns a source replaying steps in order.
func NewScript(steps ...Step) *Script {
	return &Script{steps: steps}
}

// Snapshots is shorthand for a script with no failing steps.
func Snapshots(snaps ...Snapshot) *Script {
	steps := make([]Step, len(snaps))
	for i, s := range snaps {
		steps[i] = Step{Snap: s}
	}
	return NewScript(steps...)
}

func (s *Script) Snapshot(sel Selection) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls >= len(s.steps) {
		s.calls++
		return nil, fmt.Errorf("%w: script exhausted after %d steps", ErrUnavailable, len(s.steps))
	}
	st := s.steps[s.calls]
	s.calls++
	if st.Err != nil {
		return nil, st.Err
	}

	out := make(Snapshot, len(st.Snap))
	for k, v := range st.Snap {
		if sel.has(k) {
			out[k] = v
		}
	}
	return out, nil
}

// Calls reports how many times Snapshot has been called.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
