package gacha

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoTarget marks a draw outcome that does not advance any tracked target.
const NoTarget = -1

// ItemGroup is one catalog row: Count indistinguishable items that each drop
// with the same per-item probability.
type ItemGroup struct {
	Label       string `json:"label" yaml:"label"`
	Probability string `json:"probability" yaml:"probability"` // percentage, e.g. "0.926%"
	Count       int    `json:"count" yaml:"count"`
}

// Target asks for Count distinct items of the group Label to be tracked
// individually.
type Target struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// TargetSlot is one individually tracked item, named "<label>-target-<n>".
type TargetSlot struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// DrawOutcome is one normalized entry of a draw pool.
type DrawOutcome struct {
	Weight    float64
	Guarantee bool // counts toward the soft pity block
	Target    int  // tracked target slot, or NoTarget
}

// Pool is the base draw pool: target outcomes first, in request order, then
// one residual outcome per catalog group that still has untracked items.
type Pool struct {
	Outcomes []DrawOutcome
	Targets  []TargetSlot
	Policy   GuaranteePolicy
}

// ParsePercent parses a catalog probability such as "0.926%" (or "0.926")
// into a fraction.
func ParsePercent(s string) (float64, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimSpace(strings.TrimSuffix(v, "%"))
	p, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse probability %q: %w", s, err)
	}
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0, fmt.Errorf("probability %q must be a finite value >= 0", s)
	}
	return p / 100, nil
}

// BuildPool normalizes items and synthesizes the tracked target slots.
// Weights are per-item probabilities divided by the total catalog mass, so
// the outcomes always sum to 1 regardless of how the catalog was rounded.
func BuildPool(items []ItemGroup, targets []Target, policy GuaranteePolicy) (*Pool, error) {
	perItem := make([]float64, len(items))
	index := make(map[string]int, len(items))
	var total float64
	for i, it := range items {
		p, err := ParsePercent(it.Probability)
		if err != nil {
			return nil, configError(KindInvalidItem, "item %q: %v", it.Label, err)
		}
		if it.Count < 0 {
			return nil, configError(KindInvalidItem, "item %q: count must be >= 0, got %d", it.Label, it.Count)
		}
		perItem[i] = p
		total += p * float64(it.Count)
		if _, dup := index[it.Label]; !dup {
			index[it.Label] = i
		}
	}
	if !(total > 0) {
		return nil, configError(KindZeroMass, "total probability mass must be > 0, got %v", total)
	}

	pool := &Pool{Policy: policy}
	requested := make(map[string]int, len(targets))
	for _, t := range targets {
		i, ok := index[t.Label]
		if !ok {
			return nil, configError(KindUnknownLabel, "target label %q is not in the catalog", t.Label)
		}
		if t.Count < 0 {
			return nil, configError(KindInvalidTarget, "target %q: count must be >= 0, got %d", t.Label, t.Count)
		}
		if requested[t.Label]+t.Count > items[i].Count {
			return nil, configError(KindInvalidTarget, "label %q has %d items, %d requested",
				t.Label, items[i].Count, requested[t.Label]+t.Count)
		}
		guarantee := policy.IsSoft(t.Label)
		for n := 0; n < t.Count; n++ {
			if len(pool.Targets) == MaxTargets {
				return nil, configError(KindInvalidTarget, "at most %d targets can be tracked", MaxTargets)
			}
			slot := len(pool.Targets)
			pool.Targets = append(pool.Targets, TargetSlot{
				Name:  fmt.Sprintf("%s-target-%d", t.Label, n+1),
				Label: t.Label,
			})
			pool.Outcomes = append(pool.Outcomes, DrawOutcome{
				Weight:    perItem[i] / total,
				Guarantee: guarantee,
				Target:    slot,
			})
		}
		requested[t.Label] += t.Count
	}

	for i, it := range items {
		rest := it.Count - requested[it.Label]
		if rest <= 0 {
			continue
		}
		pool.Outcomes = append(pool.Outcomes, DrawOutcome{
			Weight:    perItem[i] * float64(rest) / total,
			Guarantee: policy.IsSoft(it.Label),
			Target:    NoTarget,
		})
	}
	return pool, nil
}
