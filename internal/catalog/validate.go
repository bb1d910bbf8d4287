package catalog

import (
	"fmt"
	"strings"

	"github.com/xtding233/gacha-curve/internal/gacha"
)

// ValidateRaw checks semantic constraints of a merged RawCatalog. Engine-level
// checks (mass, target availability) are left to gacha.Validate.
func ValidateRaw(cfg RawCatalog) error {
	var errs []string

	errs = append(errs, validateItems("items", cfg.Items)...)

	// guarantee
	if g := cfg.Guarantee; g != nil {
		if g.SoftInterval < 0 {
			errs = append(errs, "guarantee.soft_interval must be >= 0")
		}
		if g.HardInterval < 0 {
			errs = append(errs, "guarantee.hard_interval must be >= 0")
		}
	}

	// presets
	ids := make(map[string]bool, len(cfg.Presets))
	for i, p := range cfg.Presets {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("presets[%d].id is required", i))
		} else if ids[p.ID] {
			errs = append(errs, fmt.Sprintf("presets[%d].id %q is duplicated", i, p.ID))
		}
		ids[p.ID] = true
		for j, t := range p.Targets {
			if t.Label == "" {
				errs = append(errs, fmt.Sprintf("presets[%d].targets[%d].label is required", i, j))
			}
			if t.Count <= 0 {
				errs = append(errs, fmt.Sprintf("presets[%d].targets[%d].count must be >= 1", i, j))
			}
		}
		errs = append(errs, validateItems(fmt.Sprintf("presets[%d].items", i), p.Items)...)
	}

	// defaults
	if cfg.Defaults.CopiesRequired < 0 {
		errs = append(errs, "defaults.copies_required must be >= 0")
	}
	if cfg.Defaults.MaxPulls < 0 {
		errs = append(errs, "defaults.max_pulls must be >= 0")
	}
	if cfg.Defaults.SampleStep < 0 {
		errs = append(errs, "defaults.sample_step must be >= 0")
	}

	// tokens (optional)
	if cfg.Tokens != nil {
		if cfg.Tokens.PerDraw < 0 {
			errs = append(errs, "tokens.per_draw must be >= 0")
		}
		if cfg.Tokens.PerTenDraw < 0 {
			errs = append(errs, "tokens.per_ten_draw must be >= 0")
		}
	}

	// store (optional)
	if s := cfg.Store; s != nil {
		if s.TaxRate < 0 {
			errs = append(errs, "store.tax_rate must be >= 0")
		}
		packs := make(map[string]bool, len(s.Packs))
		for i, p := range s.Packs {
			if p.ID == "" {
				errs = append(errs, fmt.Sprintf("store.packs[%d].id is required", i))
			} else if packs[p.ID] {
				errs = append(errs, fmt.Sprintf("store.packs[%d].id %q is duplicated", i, p.ID))
			}
			packs[p.ID] = true
			if p.PriceCents < 0 || p.Tokens < 0 || p.BonusTokens < 0 {
				errs = append(errs, fmt.Sprintf("store.packs[%d] must not have negative price or tokens", i))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateItems(path string, items []gacha.ItemGroup) []string {
	var errs []string
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it.Label == "" {
			errs = append(errs, fmt.Sprintf("%s[%d].label is required", path, i))
		} else if seen[it.Label] {
			errs = append(errs, fmt.Sprintf("%s[%d].label %q is duplicated", path, i, it.Label))
		}
		seen[it.Label] = true
		if _, err := gacha.ParsePercent(it.Probability); err != nil {
			errs = append(errs, fmt.Sprintf("%s[%d].probability: %v", path, i, err))
		}
		if it.Count < 0 {
			errs = append(errs, fmt.Sprintf("%s[%d].count must be >= 0", path, i))
		}
	}
	return errs
}
