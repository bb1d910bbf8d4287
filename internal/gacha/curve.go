package gacha

// CurvePoint holds, for one pull count, Probabilities[i] = P(at least i+1
// targets fully acquired).
type CurvePoint struct {
	PullCount     int       `json:"pull_count"`
	Probabilities []float64 `json:"probabilities"`
}

// Curve is a probability curve ordered by ascending pull count.
type Curve []CurvePoint

// At returns the point sampled at exactly pull.
func (c Curve) At(pull int) (CurvePoint, bool) {
	for _, p := range c {
		if p.PullCount == pull {
			return p, true
		}
	}
	return CurvePoint{}, false
}

// PullsFor returns the first sampled pull count at which P(at least k) >= prob.
func (c Curve) PullsFor(k int, prob float64) (int, bool) {
	if k < 1 {
		return 0, false
	}
	for _, p := range c {
		if k <= len(p.Probabilities) && p.Probabilities[k-1] >= prob {
			return p.PullCount, true
		}
	}
	return 0, false
}

// Sampled reports whether pull is emitted on a curve: the first pull, the
// last one, and every multiple of step.
func Sampled(pull, step, maxPulls int) bool {
	return pull == 1 || pull == maxPulls || pull%step == 0
}

// AtLeast folds t into cumulative probabilities: entry k-1 is the mass of
// states with at least k of numTargets targets holding copies copies.
func AtLeast(t Table, numTargets, copies int) []float64 {
	hist := make([]float64, numTargets+1)
	for st, p := range t {
		hist[st.Achieved(numTargets, copies)] += p
	}
	out := make([]float64, numTargets)
	var sum float64
	for k := numTargets; k >= 1; k-- {
		sum += hist[k]
		out[k-1] = sum
	}
	return out
}

// Aggregator collects sampled curve points from a stream of pull tables.
type Aggregator struct {
	Step       int
	MaxPulls   int
	NumTargets int
	Copies     int

	curve Curve
}

// NewAggregator sizes an aggregator for one run.
func NewAggregator(step, maxPulls, numTargets, copies int) *Aggregator {
	return &Aggregator{Step: step, MaxPulls: maxPulls, NumTargets: numTargets, Copies: copies}
}

// Observe records pull's table when pull is a sampled point. Its signature
// matches the Simulator.Run callback.
func (a *Aggregator) Observe(pull int, t Table) error {
	if !Sampled(pull, a.Step, a.MaxPulls) {
		return nil
	}
	a.curve = append(a.curve, CurvePoint{
		PullCount:     pull,
		Probabilities: AtLeast(t, a.NumTargets, a.Copies),
	})
	return nil
}

// Curve returns the points collected so far.
func (a *Aggregator) Curve() Curve {
	return a.curve
}
