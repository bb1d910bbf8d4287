package gacha

// HardPity is the 100-pull fallback: right after every Interval-th pull, the
// first eligible target (in pool emission order) that has not reached the
// required copies is granted one copy, overriding that pull's outcome.
type HardPity struct {
	Interval int
	Copies   int
	Targets  []int // eligible target slots, emission order
}

// NewHardPity collects the target slots whose label is eligible under the
// pool's policy.
func NewHardPity(pool *Pool, interval, copies int) HardPity {
	hp := HardPity{Interval: interval, Copies: copies}
	for i, t := range pool.Targets {
		if pool.Policy.IsHard(t.Label) {
			hp.Targets = append(hp.Targets, i)
		}
	}
	return hp
}

// Due reports whether the correction applies after the given 1-based pull.
func (hp HardPity) Due(pull int) bool {
	return len(hp.Targets) > 0 && pull%hp.Interval == 0
}

// Apply returns s with the grant applied and whether anything changed.
// States outside the cycle boundary or with every eligible target satisfied
// are returned unchanged.
func (hp HardPity) Apply(s State) (State, bool) {
	if s.HardPos != 0 {
		return s, false
	}
	for _, idx := range hp.Targets {
		if int(s.Counts[idx]) < hp.Copies {
			s.Counts[idx]++
			return s, true
		}
	}
	return s, false
}

// Pity bundles both guarantee rules derived from a pool.
type Pity struct {
	Soft SoftPity
	Hard HardPity
}

// Classify derives the soft pity pool and the hard pity targets from pool.
func Classify(pool *Pool, copies int) Pity {
	return Pity{
		Soft: NewSoftPity(pool.Outcomes, pool.Policy.softInterval()),
		Hard: NewHardPity(pool, pool.Policy.hardInterval(), copies),
	}
}
