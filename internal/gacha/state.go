package gacha

const (
	// MaxTargets bounds the number of individually tracked target slots.
	// The state space grows as (copies+1)^targets, so this is generous.
	MaxTargets = 16
	// MaxCopies bounds copiesRequired; counts are stored as uint8.
	MaxCopies = 255
)

// State is the DP key: per-target copy counts (capped at copiesRequired) and
// the positions inside both pity cycles. It is a comparable value, so two
// states are the same key exactly when every field matches.
type State struct {
	Counts  [MaxTargets]uint8
	SoftPos uint8  // 0..SoftInterval-1
	SoftMet bool   // a guarantee-flagged outcome already landed in this block
	HardPos uint16 // 0..HardInterval-1
}

// Achieved returns how many of the first n targets hold at least copies copies.
func (s State) Achieved(n, copies int) int {
	got := 0
	for i := 0; i < n; i++ {
		if int(s.Counts[i]) >= copies {
			got++
		}
	}
	return got
}

// Table maps each reachable state to its probability mass after some pull.
// A Table is never mutated once handed to a caller; each pull builds a new one.
type Table map[State]float64

// Mass returns the total probability held by t.
func (t Table) Mass() float64 {
	var sum float64
	for _, p := range t {
		sum += p
	}
	return sum
}
