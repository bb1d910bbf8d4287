package gacha

import (
	"context"
	"fmt"
)

// Result is the outcome of one calculation.
type Result struct {
	Targets []TargetSlot `json:"targets"`
	Curve   Curve        `json:"curve"`
}

// Calculate validates the inputs, builds the draw pool and its pity rules,
// runs the exact simulation and returns the sampled cumulative curve.
//
// Configuration problems are reported before any simulation work. A panic
// during the run is returned as a single computation error.
func Calculate(ctx context.Context, items []ItemGroup, settings Settings, policy GuaranteePolicy) (res *Result, err error) {
	if err := Validate(items, settings, policy); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &Error{Kind: KindComputation, Message: fmt.Sprint(r)}
		}
	}()

	pool, err := BuildPool(items, settings.Targets, policy)
	if err != nil {
		return nil, err
	}
	sim := NewSimulator(pool, Classify(pool, settings.CopiesRequired), settings.CopiesRequired)
	agg := NewAggregator(settings.SampleStep, settings.MaxPulls, len(pool.Targets), settings.CopiesRequired)
	if _, err := sim.Run(ctx, settings.MaxPulls, agg.Observe); err != nil {
		return nil, err
	}
	return &Result{Targets: pool.Targets, Curve: agg.Curve()}, nil
}
