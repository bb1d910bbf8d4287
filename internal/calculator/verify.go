package calculator

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/xtding233/gacha-curve/internal/gacha"
)

// Verify replays trials seeded pull sequences for req and compares them with
// the exact curve.
func (s *Service) Verify(ctx context.Context, req Request, trials int, seed uint64) (*VerifyResponse, error) {
	if trials <= 0 {
		return nil, &gacha.Error{Kind: gacha.KindInvalidSettings, Message: fmt.Sprintf("trials must be >= 1, got %d", trials)}
	}
	in, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	exact, _, err := s.run(ctx, runID, in)
	if err != nil {
		return nil, err
	}

	pool, err := gacha.BuildPool(in.items, in.settings.Targets, in.policy)
	if err != nil {
		return nil, err
	}
	copies := in.settings.CopiesRequired
	sim := gacha.NewSimulator(pool, gacha.Classify(pool, copies), copies)
	start := s.clock.Now()
	est, err := sim.Estimate(ctx, trials, in.settings.MaxPulls, in.settings.SampleStep, gacha.NewSeededRNG(seed))
	if err != nil {
		return nil, err
	}

	out := &VerifyResponse{RunID: runID, Exact: exact.Curve, Estimate: est}
	for i, p := range exact.Curve {
		if i >= len(est.Curve) {
			break
		}
		for j, v := range p.Probabilities {
			out.MaxDeviation = math.Max(out.MaxDeviation, math.Abs(v-est.Curve[i].Probabilities[j]))
		}
	}
	log.Printf("[calculator] verify %s: %d trials in %v, max deviation %.4f", runID, trials, s.clock.Since(start), out.MaxDeviation)
	return out, nil
}
