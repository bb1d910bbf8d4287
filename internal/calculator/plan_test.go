package calculator

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/xtding233/gacha-curve/internal/catalog"
	"github.com/xtding233/gacha-curve/internal/gacha"
	"github.com/xtding233/gacha-curve/internal/pricing"
	"github.com/xtding233/gacha-curve/internal/token"
)

func planRequest() PlanRequest {
	return PlanRequest{
		Request: coinRequest(20),
		Tokens:  &token.Token{Name: "gems", PerDraw: 100},
		Store: &pricing.Store{
			Currency: "USD",
			Packs:    []pricing.Pack{{ID: "p100", Name: "100 gems", Tokens: 100, PriceCents: 100}},
		},
	}
}

func TestPlanGoal(t *testing.T) {
	s := newService(t, Options{})
	req := planRequest()
	req.Probability = 0.5
	resp, err := s.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	// 1 - 0.9^6 = 0.469, 1 - 0.9^7 = 0.522
	g := resp.Goal
	if g == nil || !g.Reached || g.Pulls != 7 {
		t.Fatalf("goal = %+v, want 7 pulls", g)
	}
	if g.Tokens != 700 {
		t.Fatalf("tokens = %d, want 700", g.Tokens)
	}
	if g.Purchase == nil || g.Purchase.TotalCents != 700 {
		t.Fatalf("purchase = %+v, want 700 cents", g.Purchase)
	}
	if resp.AtLeast != 1 || resp.Budget != nil {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestPlanGoalUnreachable(t *testing.T) {
	s := newService(t, Options{})
	req := planRequest()
	req.MaxPulls = 3
	req.Probability = 0.9
	resp, err := s.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.Goal.Reached || resp.Goal.Pulls != 0 {
		t.Fatalf("goal = %+v, want unreached", resp.Goal)
	}
}

func TestPlanBudget(t *testing.T) {
	s := newService(t, Options{})
	req := planRequest()
	req.BudgetCents = 350
	resp, err := s.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	b := resp.Budget
	if b == nil || b.Pulls != 3 || b.Purchase.TotalTokens != 300 {
		t.Fatalf("budget = %+v, want 3 pulls from 300 gems", b)
	}
	if want := 1 - math.Pow(0.9, 3); math.Abs(b.Probability-want) > 1e-9 || b.Capped {
		t.Fatalf("probability = %v (capped %v), want %v", b.Probability, b.Capped, want)
	}

	req.BudgetCents = 5000 // 50 pulls, beyond max pulls 20
	resp, err = s.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !resp.Budget.Capped || resp.Budget.Pulls != 21 || resp.Budget.Purchase.TotalCents != 2100 {
		t.Fatalf("budget = %+v, want capped with 21 pulls for 2100 cents", resp.Budget)
	}
}

func TestPlanHugeBudget(t *testing.T) {
	s := newService(t, Options{})
	req := planRequest()
	req.Store.Packs = append(req.Store.Packs, pricing.Pack{ID: "p101", Name: "101 gems", Tokens: 101, PriceCents: 101})
	req.BudgetCents = 10_000_000_000
	resp, err := s.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	b := resp.Budget
	if !b.Capped || b.Pulls != 21 || b.Purchase.TotalCents > 2200 {
		t.Fatalf("budget = %+v, want capped at 21 pulls", b)
	}
	if want := 1 - math.Pow(0.9, 20); math.Abs(b.Probability-want) > 1e-9 {
		t.Fatalf("probability = %v, want %v", b.Probability, want)
	}
}

func TestPlanErrors(t *testing.T) {
	s := newService(t, Options{})
	ctx := context.Background()

	_, err := s.Plan(ctx, planRequest())
	wantKind(t, err, gacha.KindInvalidSettings)

	req := planRequest()
	req.Probability = 1.5
	_, err = s.Plan(ctx, req)
	wantKind(t, err, gacha.KindInvalidSettings)

	req = planRequest()
	req.Probability = 0.5
	req.AtLeast = 2
	_, err = s.Plan(ctx, req)
	wantKind(t, err, gacha.KindInvalidSettings)

	req = PlanRequest{Request: coinRequest(10), BudgetCents: 1000}
	_, err = s.Plan(ctx, req)
	wantKind(t, err, gacha.KindInvalidSettings)
}

func TestPlanShippedCatalog(t *testing.T) {
	s, err := New(catalog.NewLoader(filepath.Join("..", "..", "config")), Options{})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := s.Plan(context.Background(), PlanRequest{
		Request:     Request{Game: "sample", Preset: "pickup", MaxPulls: 300},
		Probability: 0.5,
		BudgetCents: 500000,
		FirstTime:   []string{"gem_3280"},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	g := resp.Goal
	if !g.Reached || g.Purchase == nil || g.Purchase.TotalTokens < g.Tokens {
		t.Fatalf("goal = %+v", g)
	}
	if resp.Budget == nil || resp.Budget.Pulls == 0 || resp.Budget.Purchase.TotalCents > 500000 {
		t.Fatalf("budget = %+v", resp.Budget)
	}
}
