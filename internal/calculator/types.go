package calculator

import (
	"github.com/xtding233/gacha-curve/internal/gacha"
	"github.com/xtding233/gacha-curve/internal/pricing"
	"github.com/xtding233/gacha-curve/internal/token"
)

// Request selects a catalog (or supplies one inline) and the settings of one
// curve. Zero settings fall back to the catalog defaults, then to
// DefaultCopies / DefaultMaxPulls / DefaultSampleStep.
type Request struct {
	Game   string `json:"game,omitempty"`
	Banner string `json:"banner,omitempty"`
	Preset string `json:"preset,omitempty"`

	// Items patch the selected catalog by label, or form the whole catalog
	// when no game is given.
	Items  []gacha.ItemGroup      `json:"items,omitempty"`
	Policy *gacha.GuaranteePolicy `json:"policy,omitempty"`

	// Targets win over TargetCounts, which win over the preset's targets.
	Targets      []gacha.Target `json:"targets,omitempty"`
	TargetCounts map[string]int `json:"target_counts,omitempty"`

	CopiesRequired int `json:"copies_required,omitempty"`
	MaxPulls       int `json:"max_pulls,omitempty"`
	SampleStep     int `json:"sample_step,omitempty"`
}

// CurveResponse is one computed curve plus the effective inputs.
type CurveResponse struct {
	RunID    string             `json:"run_id"`
	Game     string             `json:"game,omitempty"`
	Banner   string             `json:"banner,omitempty"`
	Preset   string             `json:"preset,omitempty"`
	Version  string             `json:"version,omitempty"`
	Settings gacha.Settings     `json:"settings"`
	Targets  []gacha.TargetSlot `json:"targets"`
	Curve    gacha.Curve        `json:"curve"`
	Cached   bool               `json:"cached"`
}

// BatchResult holds either a curve or the error that rejected its request.
type BatchResult struct {
	Curve *CurveResponse   `json:"curve,omitempty"`
	Error *gacha.ErrorInfo `json:"error,omitempty"`
}

// PlanRequest asks how many pulls (and tokens, and purchases) reach a
// probability, what a budget buys, or both.
type PlanRequest struct {
	Request
	// AtLeast is K in P(at least K targets); 0 means every target.
	AtLeast int `json:"at_least,omitempty"`
	// Probability is the desired P(at least K), in (0, 1].
	Probability float64 `json:"probability,omitempty"`
	BudgetCents int     `json:"budget_cents,omitempty"`
	// FirstTime lists pack IDs whose first-time x2 bonus is still available.
	FirstTime []string `json:"first_time,omitempty"`

	// Tokens and Store override the catalog's pricing.
	Tokens *token.Token   `json:"tokens,omitempty"`
	Store  *pricing.Store `json:"store,omitempty"`
}

// PlanResponse answers a PlanRequest. Goal is set when a probability was
// asked for, Budget when a budget was.
type PlanResponse struct {
	RunID   string             `json:"run_id"`
	Targets []gacha.TargetSlot `json:"targets"`
	AtLeast int                `json:"at_least"`
	Goal    *Goal              `json:"goal,omitempty"`
	Budget  *BudgetPlan        `json:"budget,omitempty"`
}

// Goal is the cheapest way to reach the desired probability.
type Goal struct {
	Probability float64 `json:"probability"`
	// Reached is false when even MaxPulls pulls fall short; Pulls is then 0.
	Reached  bool          `json:"reached"`
	Pulls    int           `json:"pulls"`
	Tokens   int           `json:"tokens"`
	Purchase *pricing.Plan `json:"purchase,omitempty"`
}

// BudgetPlan is what a budget buys.
type BudgetPlan struct {
	Purchase    pricing.Plan `json:"purchase"`
	Pulls       int          `json:"pulls"`
	Probability float64      `json:"probability"`
	// Capped is set when Pulls exceeds the computed range and Probability is
	// the value at the last computed pull. A budget beyond MaxPulls is then
	// answered with the cheapest purchase of MaxPulls+1 pulls, not its full
	// spend.
	Capped bool `json:"capped"`
}

// VerifyResponse compares the exact curve with a seeded Monte Carlo replay.
type VerifyResponse struct {
	RunID    string          `json:"run_id"`
	Exact    gacha.Curve     `json:"exact"`
	Estimate *gacha.Estimate `json:"estimate"`
	// MaxDeviation is the largest |exact - estimate| over all sampled points.
	MaxDeviation float64 `json:"max_deviation"`
}
