package gacha

import "slices"

const (
	DefaultSoftInterval = 10
	DefaultHardInterval = 100
)

// GuaranteePolicy names which catalog labels take part in the two pity rules.
// It is passed into the pool builder per run, so concurrent calculations with
// different policies never share state.
type GuaranteePolicy struct {
	// SoftLabels count toward the soft pity block (one of them at least once
	// per SoftInterval pulls).
	SoftLabels []string `json:"soft_labels" yaml:"soft_labels"`
	// HardLabels mark the targets eligible for the hard pity grant.
	HardLabels []string `json:"hard_labels" yaml:"hard_labels"`
	// Intervals; zero means the default (10 and 100).
	SoftInterval int `json:"soft_interval,omitempty" yaml:"soft_interval,omitempty"`
	HardInterval int `json:"hard_interval,omitempty" yaml:"hard_interval,omitempty"`
}

// DefaultPolicy returns the guarantee categories of the bundled catalog:
// ★5 gear and every rate-up slot count toward the 10-pull guarantee, and the
// rate-up slots are eligible for the 100-pull grant.
func DefaultPolicy() GuaranteePolicy {
	return GuaranteePolicy{
		SoftLabels: []string{"★5武器", "★5服装", "★5勲章", "追加枠", "ピックアップ", "Wピックアップ"},
		HardLabels: []string{"追加枠", "ピックアップ", "Wピックアップ"},
	}
}

// IsSoft reports whether label counts toward the soft pity block.
func (p GuaranteePolicy) IsSoft(label string) bool {
	return slices.Contains(p.SoftLabels, label)
}

// IsHard reports whether targets under label are eligible for the hard pity grant.
func (p GuaranteePolicy) IsHard(label string) bool {
	return slices.Contains(p.HardLabels, label)
}

func (p GuaranteePolicy) softInterval() int {
	if p.SoftInterval == 0 {
		return DefaultSoftInterval
	}
	return p.SoftInterval
}

func (p GuaranteePolicy) hardInterval() int {
	if p.HardInterval == 0 {
		return DefaultHardInterval
	}
	return p.HardInterval
}

func (p GuaranteePolicy) validate() error {
	// positions are stored as uint8 / uint16 in State
	if s := p.softInterval(); s < 1 || s > 255 {
		return configError(KindInvalidSettings, "soft pity interval must be in 1..255, got %d", s)
	}
	if h := p.hardInterval(); h < 1 || h > 65535 {
		return configError(KindInvalidSettings, "hard pity interval must be in 1..65535, got %d", h)
	}
	return nil
}
