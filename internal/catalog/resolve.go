// resolve.go
package catalog

import (
	"fmt"
	"slices"

	"github.com/xtding233/gacha-curve/internal/gacha"
)

// Resolver turns a game/banner/preset selection into engine inputs.
type Resolver interface {
	// Returns the merged, validated catalog with the preset's item patches
	// applied.
	Resolve(game, banner, preset string) (Resolved, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default -> game -> banner, validates the result and applies
// the named preset (if any). The returned slices are owned by the caller.
func (l *Loader) Resolve(game, banner, preset string) (Resolved, error) {
	raw, err := l.LoadMerged(game, banner)
	if err != nil {
		return Resolved{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", game, err)
	}

	res := Resolved{
		Game:     game,
		Banner:   banner,
		Version:  raw.Version,
		Items:    slices.Clone(raw.Items),
		Policy:   gacha.DefaultPolicy(),
		Defaults: raw.Defaults,
		Presets:  slices.Clone(raw.Presets),
		Tokens:   raw.Tokens,
		Store:    raw.Store,
	}
	if raw.Guarantee != nil {
		res.Policy = cloneGuarantee(*raw.Guarantee)
	}

	if preset != "" {
		i := slices.IndexFunc(res.Presets, func(p Preset) bool { return p.ID == preset })
		if i < 0 {
			return Resolved{}, fmt.Errorf("%w: %s in %s", ErrUnknownPreset, preset, game)
		}
		p := res.Presets[i]
		p.Targets = slices.Clone(p.Targets)
		res.Preset = &p
		res.Items = MergeItems(res.Items, p.Items)
	}
	return res, nil
}
