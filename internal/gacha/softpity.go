package gacha

// SoftPity is the 10-pull guarantee: within each block of Interval pulls, if
// no guarantee-flagged outcome landed on pulls 1..Interval-1, the last pull
// of the block is drawn only from the guarantee-flagged outcomes.
type SoftPity struct {
	Interval int
	// Pool holds the guarantee-flagged outcomes of the base pool with their
	// weights rescaled to sum to 1. Empty when the catalog has none, in which
	// case the rule never fires.
	Pool []DrawOutcome
}

// NewSoftPity derives the forced pool from base.
func NewSoftPity(base []DrawOutcome, interval int) SoftPity {
	var total float64
	for _, o := range base {
		if o.Guarantee {
			total += o.Weight
		}
	}
	sp := SoftPity{Interval: interval}
	if !(total > 0) {
		return sp
	}
	for _, o := range base {
		if o.Guarantee {
			o.Weight /= total
			sp.Pool = append(sp.Pool, o)
		}
	}
	return sp
}

// Forced reports whether the next pull from s must use the forced pool.
func (sp SoftPity) Forced(s State) bool {
	return len(sp.Pool) > 0 && int(s.SoftPos) == sp.Interval-1 && !s.SoftMet
}

// advance moves the block position past one draw of o. A forced draw always
// closes the block; otherwise the block closes when the position wraps.
func (sp SoftPity) advance(s *State, o DrawOutcome, forced bool) {
	if forced {
		s.SoftPos, s.SoftMet = 0, false
		return
	}
	s.SoftMet = s.SoftMet || o.Guarantee
	s.SoftPos = uint8((int(s.SoftPos) + 1) % sp.Interval)
	if s.SoftPos == 0 {
		s.SoftMet = false
	}
}
