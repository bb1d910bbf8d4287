package calculator

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/xtding233/gacha-curve/internal/gacha"
	"github.com/xtding233/gacha-curve/internal/pricing"
	"github.com/xtding233/gacha-curve/internal/token"
)

// Plan computes a per-pull curve and answers the probability goal and/or the
// budget question of req.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	if req.Probability == 0 && req.BudgetCents == 0 {
		return nil, planError("a plan needs a probability, a budget or both")
	}
	if math.IsNaN(req.Probability) || req.Probability < 0 || req.Probability > 1 {
		return nil, planError("probability must be in (0, 1], got %v", req.Probability)
	}
	if req.BudgetCents < 0 {
		return nil, planError("budget must be >= 0, got %d", req.BudgetCents)
	}

	in, err := s.resolve(req.Request)
	if err != nil {
		return nil, err
	}
	// Every pull count is a candidate answer.
	in.settings.SampleStep = 1
	if req.Tokens != nil {
		in.tokens = req.Tokens
	}
	if req.Store != nil {
		in.store = req.Store
	}

	k := req.AtLeast
	if n := in.settings.NumSlots(); k == 0 {
		k = n
	} else if k < 0 || k > n {
		return nil, planError("at_least must be between 1 and %d targets, got %d", n, k)
	}
	if req.BudgetCents > 0 && (in.tokens == nil || in.tokens.PerDraw <= 0 || in.store == nil) {
		return nil, planError("budget planning needs token and store pricing for the game")
	}

	runID := uuid.NewString()
	res, _, err := s.run(ctx, runID, in)
	if err != nil {
		return nil, err
	}
	out := &PlanResponse{RunID: runID, Targets: res.Targets, AtLeast: k}
	first := pricing.FirstTime(req.FirstTime)

	if req.Probability > 0 {
		goal := &Goal{Probability: req.Probability}
		if pulls, ok := res.Curve.PullsFor(k, req.Probability); ok {
			goal.Reached, goal.Pulls = true, pulls
			if in.tokens != nil {
				goal.Tokens = in.tokens.TokensForDraws(pulls)
				if in.store != nil {
					p, err := pricing.MinCostAtLeastTokens(*in.store, goal.Tokens, first)
					if err != nil {
						return nil, planError("purchase for %d tokens: %v", goal.Tokens, err)
					}
					goal.Purchase = &p
				}
			}
		}
		out.Goal = goal
	}

	if req.BudgetCents > 0 {
		out.Budget, err = budgetPlan(res.Curve, k, in.settings.MaxPulls, *in.tokens, *in.store, req.BudgetCents, first)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// budgetPlan answers what budget buys. A budget that covers more than
// maxPulls pulls is answered with the cheapest purchase of maxPulls+1 pulls,
// so the search never grows with the budget itself.
func budgetPlan(curve gacha.Curve, k, maxPulls int, tok token.Token, store pricing.Store, budget int, first pricing.FirstTimeState) (*BudgetPlan, error) {
	beyond, err := pricing.MinCostAtLeastTokens(store, tok.TokensForDraws(maxPulls+1), first)
	if err != nil {
		return nil, planError("purchase for %d pulls: %v", maxPulls+1, err)
	}
	purchase := beyond
	if len(beyond.Purchases) == 0 || budget < beyond.TotalCents {
		purchase, err = pricing.MaxTokensUnderBudget(store, budget, first)
		if err != nil {
			return nil, planError("budget of %d cents: %v", budget, err)
		}
	}
	bp := &BudgetPlan{Purchase: purchase, Pulls: tok.DrawsForTokens(purchase.TotalTokens)}
	if bp.Pulls == 0 || len(curve) == 0 {
		return bp, nil
	}
	last := curve[len(curve)-1]
	pt, ok := curve.At(bp.Pulls)
	if !ok {
		pt, bp.Capped = last, true
	}
	bp.Probability = pt.Probabilities[k-1]
	return bp, nil
}

func planError(format string, args ...any) *gacha.Error {
	return &gacha.Error{Kind: gacha.KindInvalidSettings, Message: fmt.Sprintf(format, args...)}
}
