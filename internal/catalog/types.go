// types.go
package catalog

import (
	"github.com/xtding233/gacha-curve/internal/gacha"
	"github.com/xtding233/gacha-curve/internal/pricing"
	"github.com/xtding233/gacha-curve/internal/token"
)

// RawCatalog is one YAML layer as loaded from disk. Layers are merged
// default -> game -> banner before use.
type RawCatalog struct {
	Version   string                 `yaml:"version"`
	Notes     string                 `yaml:"notes,omitempty"`
	Guarantee *gacha.GuaranteePolicy `yaml:"guarantee,omitempty"`
	Items     []gacha.ItemGroup      `yaml:"items,omitempty"`
	Presets   []Preset               `yaml:"presets,omitempty"`
	Defaults  Defaults               `yaml:"defaults,omitempty"`
	Tokens    *token.Token           `yaml:"tokens,omitempty"`
	Store     *pricing.Store         `yaml:"store,omitempty"`
}

// Preset is a named target selection, optionally patching catalog rows
// (matched by label) for the banner it describes.
type Preset struct {
	ID      string            `json:"id" yaml:"id"`
	Name    string            `json:"name" yaml:"name"`
	Targets []gacha.Target    `json:"targets" yaml:"targets"`
	Items   []gacha.ItemGroup `json:"items,omitempty" yaml:"items,omitempty"`
}

// Defaults fill request settings left at zero.
type Defaults struct {
	CopiesRequired int `json:"copies_required" yaml:"copies_required,omitempty"`
	MaxPulls       int `json:"max_pulls" yaml:"max_pulls,omitempty"`
	SampleStep     int `json:"sample_step" yaml:"sample_step,omitempty"`
}

// Resolved is a fully merged catalog ready for the engine.
type Resolved struct {
	Game     string
	Banner   string
	Version  string // effective catalog version for tracing
	Items    []gacha.ItemGroup
	Policy   gacha.GuaranteePolicy
	Defaults Defaults
	Presets  []Preset
	Preset   *Preset // selected preset, nil when none was asked for
	Tokens   *token.Token
	Store    *pricing.Store
}
