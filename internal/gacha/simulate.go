package gacha

import (
	"context"
	"fmt"
	"iter"
	"math"
)

// DefaultEpsilon is the mass below which a state is dropped after each pull.
const DefaultEpsilon = 1e-15

// Simulator advances the exact probability table pull by pull.
// A Simulator holds no per-run state and may be shared across goroutines.
type Simulator struct {
	Pool    *Pool
	Pity    Pity
	Copies  int
	Epsilon float64 // states below this mass are pruned; 0 disables pruning
}

// NewSimulator wires a pool and its pity rules for copies required per target.
func NewSimulator(pool *Pool, pity Pity, copies int) *Simulator {
	return &Simulator{Pool: pool, Pity: pity, Copies: copies, Epsilon: DefaultEpsilon}
}

// Initial returns the table before the first pull.
func (s *Simulator) Initial() Table {
	return Table{State{}: 1.0}
}

// next is the successor of st after drawing o.
func (s *Simulator) next(st State, o DrawOutcome, forced bool) State {
	if o.Target != NoTarget && int(st.Counts[o.Target]) < s.Copies {
		st.Counts[o.Target]++
	}
	st.HardPos = uint16((int(st.HardPos) + 1) % s.Pity.Hard.Interval)
	s.Pity.Soft.advance(&st, o, forced)
	return st
}

// Step returns the table after pull (1-based), given the table before it.
// prev is not modified.
func (s *Simulator) Step(prev Table, pull int) Table {
	next := make(Table, len(prev))
	for st, p := range prev {
		if p == 0 {
			continue
		}
		outcomes, forced := s.Pool.Outcomes, s.Pity.Soft.Forced(st)
		if forced {
			outcomes = s.Pity.Soft.Pool
		}
		for _, o := range outcomes {
			next[s.next(st, o, forced)] += p * o.Weight
		}
	}

	if s.Pity.Hard.Due(pull) {
		corrected := make(Table, len(next))
		for st, p := range next {
			st, _ = s.Pity.Hard.Apply(st)
			corrected[st] += p
		}
		next = corrected
	}

	if s.Epsilon > 0 {
		for st, p := range next {
			if p < s.Epsilon {
				delete(next, st)
			}
		}
	}
	return next
}

// Run drives maxPulls pulls from the initial state, calling fn (if non-nil)
// with each pull's table. It returns the final table, or the first error from
// Pulls or fn.
func (s *Simulator) Run(ctx context.Context, maxPulls int, fn func(pull int, t Table) error) (Table, error) {
	t, pull := s.Initial(), 0
	for next, err := range s.Pulls(ctx, maxPulls) {
		if err != nil {
			return nil, err
		}
		pull++
		t = next
		if fn != nil {
			if err := fn(pull, t); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// Pulls yields the table after each of pulls 1..maxPulls, computed lazily so
// only one table is live at a time unless the caller keeps them. ctx is
// checked once per pull boundary. When ctx ends or the mass stops being
// finite, the sequence yields a nil table with the error and stops.
func (s *Simulator) Pulls(ctx context.Context, maxPulls int) iter.Seq2[Table, error] {
	return func(yield func(Table, error) bool) {
		t := s.Initial()
		for pull := 1; pull <= maxPulls; pull++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			t = s.Step(t, pull)
			if m := t.Mass(); math.IsNaN(m) || math.IsInf(m, 0) {
				yield(nil, &Error{Kind: KindComputation, Message: fmt.Sprintf("probability mass is %v after pull %d", m, pull)})
				return
			}
			if !yield(t, nil) {
				return
			}
		}
	}
}
