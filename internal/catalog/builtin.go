package catalog

import "github.com/xtding233/gacha-curve/internal/gacha"

// BuiltinGame names the catalog compiled into the binary. It resolves without
// a games/<game>.yaml file, though default.yaml and banner files still apply.
const BuiltinGame = "builtin"

// Builtin returns the bundled item table and its two presets.
func Builtin() RawCatalog {
	policy := gacha.DefaultPolicy()
	return RawCatalog{
		Version:   "builtin-1",
		Notes:     "bundled sample catalog",
		Guarantee: &policy,
		Items:     builtinItems(),
		Presets: []Preset{
			{
				ID:      "w_pickup",
				Name:    "Wピックアップ",
				Targets: []gacha.Target{{Label: "Wピックアップ", Count: 1}},
			},
			{
				ID:      "normal_pickup",
				Name:    "通常ピックアップ",
				Targets: []gacha.Target{{Label: "ピックアップ", Count: 1}, {Label: "追加枠", Count: 1}},
				Items: []gacha.ItemGroup{
					{Label: "Wピックアップ", Probability: "0.000%", Count: 0},
					{Label: "ピックアップ", Probability: "1.436%", Count: 1},
					{Label: "追加枠", Probability: "1.777%", Count: 1},
				},
			},
		},
		Defaults: Defaults{CopiesRequired: 1, MaxPulls: 100, SampleStep: 10},
	}
}

func builtinItems() []gacha.ItemGroup {
	return []gacha.ItemGroup{
		{Label: "Wピックアップ", Probability: "0.926%", Count: 12},
		{Label: "ピックアップ", Probability: "0.000%", Count: 0},
		{Label: "追加枠", Probability: "0.000%", Count: 0},
		{Label: "★5武器", Probability: "0.008%", Count: 188},
		{Label: "★5服装", Probability: "0.012%", Count: 62},
		{Label: "★5勲章", Probability: "0.008%", Count: 158},
		{Label: "★4武器-a", Probability: "0.067%", Count: 19},
		{Label: "★4武器-b", Probability: "0.057%", Count: 5},
		{Label: "★3武器", Probability: "0.212%", Count: 26},
		{Label: "★2武器", Probability: "0.329%", Count: 22},
		{Label: "★4服装-a", Probability: "0.057%", Count: 10},
		{Label: "★4服装-b", Probability: "0.019%", Count: 3},
		{Label: "★4服装-c", Probability: "0.010%", Count: 1},
		{Label: "★3服装-a", Probability: "0.180%", Count: 12},
		{Label: "★3服装-b", Probability: "0.053%", Count: 1},
		{Label: "★2服装", Probability: "0.265%", Count: 11},
		{Label: "★4勲章-a", Probability: "0.038%", Count: 16},
		{Label: "★4勲章-b", Probability: "0.029%", Count: 1},
		{Label: "★3勲章-a", Probability: "0.149%", Count: 20},
		{Label: "★3勲章-b", Probability: "0.053%", Count: 1},
		{Label: "★2勲章", Probability: "0.350%", Count: 11},
		{Label: "素材-a", Probability: "27.775%", Count: 2},
		{Label: "素材-b", Probability: "2.187%", Count: 1},
	}
}
