package gacha

import (
	"sort"
)

// Settings is the target configuration of one calculation.
type Settings struct {
	Targets        []Target `json:"targets" yaml:"targets"`
	CopiesRequired int      `json:"copies_required" yaml:"copies_required"`
	MaxPulls       int      `json:"max_pulls" yaml:"max_pulls"`
	SampleStep     int      `json:"sample_step" yaml:"sample_step"`
}

// NumSlots returns the number of tracked target slots the settings ask for.
func (s Settings) NumSlots() int {
	n := 0
	for _, t := range s.Targets {
		if t.Count > 0 {
			n += t.Count
		}
	}
	return n
}

// Validate checks items, settings and policy before any simulation work and
// returns the first configuration error found.
func Validate(items []ItemGroup, settings Settings, policy GuaranteePolicy) error {
	if len(items) == 0 {
		return configError(KindNoData, "the item catalog is empty")
	}
	if settings.NumSlots() == 0 {
		return configError(KindNoTargets, "no targets selected")
	}
	if settings.CopiesRequired < 1 || settings.CopiesRequired > MaxCopies {
		return configError(KindInvalidSettings, "copies required must be in 1..%d, got %d", MaxCopies, settings.CopiesRequired)
	}
	if settings.MaxPulls < 1 {
		return configError(KindInvalidSettings, "max pulls must be >= 1, got %d", settings.MaxPulls)
	}
	if settings.SampleStep < 1 {
		return configError(KindInvalidSettings, "sample step must be >= 1, got %d", settings.SampleStep)
	}
	if err := policy.validate(); err != nil {
		return err
	}

	counts := make(map[string]int, len(items))
	var total float64
	for _, it := range items {
		if _, dup := counts[it.Label]; dup {
			return configError(KindInvalidItem, "duplicate item label %q", it.Label)
		}
		p, err := ParsePercent(it.Probability)
		if err != nil {
			return configError(KindInvalidItem, "item %q: %v", it.Label, err)
		}
		if it.Count < 0 {
			return configError(KindInvalidItem, "item %q: count must be >= 0, got %d", it.Label, it.Count)
		}
		counts[it.Label] = it.Count
		total += p * float64(it.Count)
	}
	if !(total > 0) {
		return configError(KindZeroMass, "total probability mass must be > 0, got %v", total)
	}

	seen := make(map[string]bool, len(settings.Targets))
	for _, t := range settings.Targets {
		if seen[t.Label] {
			return configError(KindInvalidTarget, "target label %q listed twice", t.Label)
		}
		seen[t.Label] = true
		available, ok := counts[t.Label]
		if !ok {
			return configError(KindUnknownLabel, "target label %q is not in the catalog", t.Label)
		}
		if t.Count < 0 {
			return configError(KindInvalidTarget, "target %q: count must be >= 0, got %d", t.Label, t.Count)
		}
		if t.Count > available {
			return configError(KindInvalidTarget, "label %q has %d items, %d requested", t.Label, available, t.Count)
		}
	}
	if n := settings.NumSlots(); n > MaxTargets {
		return configError(KindInvalidTarget, "at most %d targets can be tracked, %d requested", MaxTargets, n)
	}
	return nil
}

// TargetsFromMap orders a label -> count selection by catalog order. Counts
// <= 0 are dropped; labels missing from the catalog are appended in sorted
// order so Validate can report them.
func TargetsFromMap(items []ItemGroup, byLabel map[string]int) []Target {
	var out []Target
	used := make(map[string]bool, len(byLabel))
	for _, it := range items {
		n, ok := byLabel[it.Label]
		if !ok || used[it.Label] {
			continue
		}
		used[it.Label] = true
		if n > 0 {
			out = append(out, Target{Label: it.Label, Count: n})
		}
	}
	var missing []string
	for label, n := range byLabel {
		if !used[label] && n > 0 {
			missing = append(missing, label)
		}
	}
	sort.Strings(missing)
	for _, label := range missing {
		out = append(out, Target{Label: label, Count: byLabel[label]})
	}
	return out
}
