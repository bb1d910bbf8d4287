package gacha

import (
	"context"
	"math"
	"sort"
)

// Stats summarizes integer samples.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// raw samples, for callers that want histograms
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// population variance
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// Estimate is an empirical curve from replayed pull sequences.
type Estimate struct {
	Trials int   `json:"trials"`
	Curve  Curve `json:"curve"`
	// Completion covers trials that acquired every target within maxPulls:
	// the pull count at which the last one landed.
	Completion Stats `json:"completion"`
	Incomplete int   `json:"incomplete"`
}

// Estimate replays trials independent pull sequences drawn from rng under
// the same pity rules as Step and tallies the sampled points. It exists to
// cross-check the exact table; results converge to the exact curve as trials
// grow. ctx is checked between trials.
func (s *Simulator) Estimate(ctx context.Context, trials, maxPulls, step int, rng RandomSource) (*Estimate, error) {
	if trials <= 0 || maxPulls <= 0 {
		return &Estimate{}, nil
	}
	if step < 1 {
		step = 1
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	n := len(s.Pool.Targets)

	var pulls []int
	for pull := 1; pull <= maxPulls; pull++ {
		if Sampled(pull, step, maxPulls) {
			pulls = append(pulls, pull)
		}
	}
	hist := make([][]int, len(pulls))
	for i := range hist {
		hist[i] = make([]int, n+1)
	}

	var completions []int
	for trial := 0; trial < trials; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var st State
		point, done := 0, false
		for pull := 1; pull <= maxPulls; pull++ {
			outcomes, forced := s.Pool.Outcomes, s.Pity.Soft.Forced(st)
			if forced {
				outcomes = s.Pity.Soft.Pool
			}
			i, err := Draw(outcomes, rng)
			if err != nil {
				return nil, err
			}
			st = s.next(st, outcomes[i], forced)
			if s.Pity.Hard.Due(pull) {
				st, _ = s.Pity.Hard.Apply(st)
			}

			got := st.Achieved(n, s.Copies)
			if !done && got == n {
				done = true
				completions = append(completions, pull)
			}
			if point < len(pulls) && pulls[point] == pull {
				hist[point][got]++
				point++
			}
		}
	}

	est := &Estimate{
		Trials:     trials,
		Completion: calcStats(completions),
		Incomplete: trials - len(completions),
	}
	for i, pull := range pulls {
		probs := make([]float64, n)
		cum := 0
		for k := n; k >= 1; k-- {
			cum += hist[i][k]
			probs[k-1] = float64(cum) / float64(trials)
		}
		est.Curve = append(est.Curve, CurvePoint{PullCount: pull, Probabilities: probs})
	}
	return est, nil
}
