package gacha

import "errors"

var ErrEmptyPool = errors.New("draw pool is empty")

// Draw picks one outcome index from outcomes using a single uniform sample.
// Weights are expected to sum to 1; any rounding shortfall lands on the last
// outcome. A nil rng falls back to DefaultRNG.
func Draw(outcomes []DrawOutcome, rng RandomSource) (int, error) {
	if len(outcomes) == 0 {
		return 0, ErrEmptyPool
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	u := rng.Float64()
	var acc float64
	for i, o := range outcomes {
		acc += o.Weight
		if u < acc {
			return i, nil
		}
	}
	return len(outcomes) - 1, nil
}
